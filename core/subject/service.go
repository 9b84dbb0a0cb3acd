package subject

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/school"
)

const errSubjectNotFound = "Subject not found"

type (
	Repository interface {
		CreateSubjects(ctx context.Context, subjects ...Subject) ([]Subject, error)
		SubjectCodeExists(ctx context.Context, schoolID, code string) (bool, error)
		QuerySubjects(ctx context.Context, filter Filter) ([]Subject, error)
		// GetSubject returns ErrNotFound when there is no such subject.
		GetSubject(ctx context.Context, id string) (Subject, error)
		// DeleteSubject returns the deleted subject, or ErrNotFound.
		DeleteSubject(ctx context.Context, id string) (Subject, error)
		// DeleteSubjects removes every subject matching the filter and returns them.
		DeleteSubjects(ctx context.Context, filter Filter) ([]Subject, error)
	}

	Service interface {
		Create(ctx context.Context, schoolID, classID string, subjects []NewSubject) ([]Subject, error)
		QueryBySchool(ctx context.Context, schoolID string) ([]Detail, error)
		QueryByClass(ctx context.Context, classID string) ([]Detail, error)
		QueryUnassigned(ctx context.Context, classID string) ([]Detail, error)
		Get(ctx context.Context, id string) (Detail, error)
		Delete(ctx context.Context, id string) (Subject, CascadeReport, error)
		DeleteByClass(ctx context.Context, classID string) ([]Subject, CascadeReport, error)
		DeleteBySchool(ctx context.Context, schoolID string) ([]Subject, CascadeReport, error)
	}

	service struct {
		repo       Repository
		schoolRepo school.Repository
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, schoolRepo school.Repository, logger core.Logger) Service {
	return &service{repo: repo, schoolRepo: schoolRepo, logger: logger}
}

func (svc *service) Create(ctx context.Context, schoolID, classID string, subjects []NewSubject) ([]Subject, error) {
	if len(subjects) == 0 {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "subjects", Error: "this field is required"})
	}

	// only the first code is checked against the school's existing subjects
	first := subjects[0].clean()
	exists, err := svc.repo.SubjectCodeExists(ctx, schoolID, first.Code)
	if err != nil {
		return nil, errors.Wrap(err, "checking subject code")
	}
	if exists {
		return nil, ErrCodeExists
	}

	newSubjects := make([]Subject, 0, len(subjects))
	for _, nsub := range subjects {
		nsub = nsub.clean()
		newSubjects = append(newSubjects, Subject{
			Name:     nsub.Name,
			Code:     nsub.Code,
			Sessions: nsub.Sessions,
			ClassID:  classID,
			SchoolID: schoolID,
		})
	}
	created, err := svc.repo.CreateSubjects(ctx, newSubjects...)
	if err != nil {
		return nil, errors.Wrap(err, "creating subjects")
	}
	return created, nil
}

func (svc *service) QueryBySchool(ctx context.Context, schoolID string) ([]Detail, error) {
	return svc.query(ctx, Filter{SchoolID: schoolID})
}

func (svc *service) QueryByClass(ctx context.Context, classID string) ([]Detail, error) {
	return svc.query(ctx, Filter{ClassID: classID})
}

func (svc *service) QueryUnassigned(ctx context.Context, classID string) ([]Detail, error) {
	return svc.query(ctx, Filter{ClassID: classID, Unassigned: true})
}

func (svc *service) query(ctx context.Context, filter Filter) ([]Detail, error) {
	if filter.IsEmpty() {
		return nil, core.NewValidationError(errNoScope)
	}
	subjects, err := svc.repo.QuerySubjects(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return svc.details(ctx, subjects...)
}

func (svc *service) Get(ctx context.Context, id string) (Detail, error) {
	sub, err := svc.repo.GetSubject(ctx, id)
	if err != nil {
		return Detail{}, errors.Wrap(err, "getting subject")
	}
	details, err := svc.details(ctx, sub)
	if err != nil {
		return Detail{}, err
	}
	return details[0], nil
}

// Delete removes the subject then strips it from teachers and from the
// students' exam results and attendance, leaving their other entries intact.
func (svc *service) Delete(ctx context.Context, id string) (Subject, CascadeReport, error) {
	var report CascadeReport

	sub, err := svc.repo.DeleteSubject(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Subject{}, report, core.NewNotFoundError(errSubjectNotFound)
		}
		return Subject{}, report, errors.Wrap(err, "deleting subject")
	}
	deleted := []Subject{sub}

	if report.TeachersUpdated, err = svc.schoolRepo.PullTeacherSubjects(ctx, sub.ID); err != nil {
		return sub, report, svc.cascadeFailed(StepPullTeacherSubjects, deleted, report, err)
	}
	if report.StudentsUpdated, err = svc.schoolRepo.PullStudentSubjectRecords(ctx, sub.ID); err != nil {
		return sub, report, svc.cascadeFailed(StepStudentRecords, deleted, report, err)
	}

	svc.logger.Info(fmt.Sprintf(
		"subject %s deleted: teachers updated=%d students updated=%d",
		sub.ID, report.TeachersUpdated, report.StudentsUpdated,
	))
	return sub, report, nil
}

func (svc *service) DeleteByClass(ctx context.Context, classID string) ([]Subject, CascadeReport, error) {
	return svc.deleteMany(ctx, Filter{ClassID: classID})
}

func (svc *service) DeleteBySchool(ctx context.Context, schoolID string) ([]Subject, CascadeReport, error) {
	return svc.deleteMany(ctx, Filter{SchoolID: schoolID})
}

// deleteMany removes the matching subjects and strips them from teachers.
// Unlike Delete, it blanks the exam results and attendance of every student
// once at least one subject was removed. When nothing matched, students are left alone.
func (svc *service) deleteMany(ctx context.Context, filter Filter) ([]Subject, CascadeReport, error) {
	var report CascadeReport
	if filter.IsEmpty() {
		return nil, report, core.NewValidationError(errNoScope)
	}

	deleted, err := svc.repo.DeleteSubjects(ctx, filter)
	if err != nil {
		return nil, report, errors.Wrap(err, "deleting subjects")
	}
	if len(deleted) == 0 {
		return deleted, report, nil
	}

	ids := make([]string, 0, len(deleted))
	for _, sub := range deleted {
		ids = append(ids, sub.ID)
	}
	if report.TeachersUpdated, err = svc.schoolRepo.PullTeacherSubjects(ctx, ids...); err != nil {
		return deleted, report, svc.cascadeFailed(StepPullTeacherSubjects, deleted, report, err)
	}
	if report.StudentsUpdated, err = svc.schoolRepo.ResetStudentSubjectRecords(ctx); err != nil {
		return deleted, report, svc.cascadeFailed(StepStudentRecords, deleted, report, err)
	}

	svc.logger.Info(fmt.Sprintf(
		"%d subject(s) deleted: teachers updated=%d students reset=%d",
		len(deleted), report.TeachersUpdated, report.StudentsUpdated,
	))
	return deleted, report, nil
}

func (svc *service) cascadeFailed(step string, deleted []Subject, report CascadeReport, err error) error {
	cErr := &CascadeError{Step: step, Deleted: deleted, Report: report, Err: err}
	svc.logger.Error("subject delete cascade left dangling references", cErr)
	return cErr
}

// details resolves the subjects' classes & teachers.
func (svc *service) details(ctx context.Context, subjects ...Subject) ([]Detail, error) {
	classIDs := make(core.StringSet)
	teacherIDs := make(core.StringSet)
	for _, sub := range subjects {
		classIDs[sub.ClassID] = struct{}{}
		if sub.TeacherID != "" {
			teacherIDs[sub.TeacherID] = struct{}{}
		}
	}
	dir, err := school.LoadDirectory(ctx, svc.schoolRepo, nil, teacherIDs.Values(), classIDs.Values())
	if err != nil {
		return nil, errors.Wrap(err, "resolving subject references")
	}

	details := make([]Detail, 0, len(subjects))
	for _, sub := range subjects {
		details = append(details, Detail{
			ID:       sub.ID,
			Name:     sub.Name,
			Code:     sub.Code,
			Sessions: sub.Sessions,
			Class:    dir.Class(sub.ClassID),
			SchoolID: sub.SchoolID,
			Teacher:  dir.Teacher(sub.TeacherID),
		})
	}
	return details, nil
}
