package complaint

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/school"
)

// Status is where a complaint stands. Any transition is allowed.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

var Statuses = []Status{StatusPending, StatusResolved}

// ParseStatus accepts only the known statuses, case-insensitively.
func ParseStatus(s string) (Status, error) {
	status := Status(core.CleanString(s, true /* lower */))
	for _, st := range Statuses {
		if status == st {
			return status, nil
		}
	}
	return "", core.NewValidationError(nil, core.FieldError{
		Field: "status",
		Error: fmt.Sprintf("status must be one of %v", Statuses),
	})
}

type Complaint struct {
	ID       string    `json:"_id"`
	UserID   string    `json:"user"`
	Date     time.Time `json:"date"`
	Text     string    `json:"complaint"`
	SchoolID string    `json:"school"`
	Status   Status    `json:"status"`
}

// Detail is a complaint with its author resolved.
type Detail struct {
	ID       string             `json:"_id"`
	User     *school.StudentRef `json:"user"`
	Date     time.Time          `json:"date"`
	Text     string             `json:"complaint"`
	SchoolID string             `json:"school"`
	Status   Status             `json:"status"`
}

type NewComplaint struct {
	SchoolID string `json:"-"`
	UserID   string `json:"user" validate:"required,notblank"`
	Date     string `json:"date" validate:"required,notblank"`
	Text     string `json:"complaint" validate:"required,notblank"`
}

func (nc NewComplaint) Validate(validate *validator.Validate) error {
	if err := validate.Struct(nc); err != nil {
		return err
	}
	if _, err := core.ParseDate(nc.Date); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: err.Error()})
	}
	return nil
}

type UpdateStatus struct {
	Status string `json:"status" validate:"required,notblank"`
}

func (us UpdateStatus) Validate(validate *validator.Validate) (Status, error) {
	if err := validate.Struct(us); err != nil {
		return "", err
	}
	return ParseStatus(us.Status)
}

type UpdateManyStatus struct {
	IDs    []string `json:"complainIds" validate:"required,min=1,dive,required,notblank"`
	Status string   `json:"status" validate:"required,notblank"`
}

func (ums UpdateManyStatus) Validate(validate *validator.Validate) (Status, error) {
	if err := validate.Struct(ums); err != nil {
		return "", err
	}
	return ParseStatus(ums.Status)
}
