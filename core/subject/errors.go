package subject

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("subject not found")
	ErrCodeExists = errors.New("Sorry this subcode must be unique as it already exists")

	errNoScope = errors.New("a school or class is required")
)

// Cascade steps, in execution order.
const (
	StepDeleteSubjects      = "delete subjects"
	StepPullTeacherSubjects = "pull teacher subjects"
	StepStudentRecords      = "clean student records"
)

// CascadeError reports a delete cascade that stopped after the subjects were removed.
// Nothing is rolled back: Deleted are gone and Report holds what the completed steps touched.
type CascadeError struct {
	Step    string
	Deleted []Subject
	Report  CascadeReport
	Err     error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("subject cascade failed at %q after deleting %d subject(s): %v", e.Step, len(e.Deleted), e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}
