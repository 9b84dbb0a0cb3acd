package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/school"
)

const (
	unknownClass  = "Unknown Class"
	unknownMarker = "Unknown"
)

const errNotClassTeacher = "Only the class teacher can mark attendance for this class."

type (
	Repository interface {
		// UpsertAttendance writes each row keyed by (student, class, date), overwriting
		// status & marker of an existing row. Rows are applied in order; it is not atomic as a whole.
		UpsertAttendance(ctx context.Context, rows ...Attendance) (core.UpdateResult, error)
		// QueryClassAttendance returns the rows of a class, restricted to one day when date is set.
		QueryClassAttendance(ctx context.Context, classID string, date *time.Time) ([]Attendance, error)
		// QueryStudentAttendance returns the rows of a student, newest first.
		QueryStudentAttendance(ctx context.Context, studentID string) ([]Attendance, error)
	}

	Service interface {
		MarkClassAttendance(ctx context.Context, ma MarkAttendance) (core.UpdateResult, error)
		QueryClassAttendance(ctx context.Context, classID string, date *time.Time) ([]ClassRecord, error)
		QueryStudentAttendance(ctx context.Context, studentID string) ([]StudentRecord, error)
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

func (svc *service) MarkClassAttendance(ctx context.Context, ma MarkAttendance) (core.UpdateResult, error) {
	// only the class teacher may mark attendance, whatever the records say
	teacher, err := svc.schoolRepo.GetTeacher(ctx, ma.TeacherID)
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return core.UpdateResult{}, core.NewPermissionError(errNotClassTeacher)
		}
		return core.UpdateResult{}, errors.Wrap(err, "finding teacher")
	}
	if !teacher.IsClassTeacherOf(ma.ClassID) {
		return core.UpdateResult{}, core.NewPermissionError(errNotClassTeacher)
	}

	// validate every record before writing anything
	studentIDs, err := svc.schoolRepo.QueryClassStudentIDs(ctx, ma.ClassID)
	if err != nil {
		return core.UpdateResult{}, errors.Wrap(err, "querying class students")
	}
	inClass := core.NewStringSet(studentIDs...)
	for i, rec := range ma.Records {
		if !inClass.Has(rec.StudentID) {
			return core.UpdateResult{}, core.NewValidationError(
				errors.Errorf("Student %s does not belong to this class", rec.StudentID),
			)
		}
		if !rec.Status.Valid() {
			return core.UpdateResult{}, core.NewValidationError(nil, core.FieldError{
				Field: fmt.Sprintf("records[%d].status", i),
				Error: fmt.Sprintf("status must be one of %v", Statuses),
			})
		}
	}
	if len(ma.Records) == 0 {
		return core.UpdateResult{}, nil
	}

	date := core.NormalizeDate(ma.Date)
	rows := make([]Attendance, 0, len(ma.Records))
	for _, rec := range ma.Records {
		rows = append(rows, Attendance{
			StudentID: rec.StudentID,
			ClassID:   ma.ClassID,
			Date:      date,
			Status:    rec.Status,
			MarkedBy:  teacher.ID,
		})
	}
	res, err := svc.repo.UpsertAttendance(ctx, rows...)
	if err != nil {
		return res, errors.Wrap(err, "upserting attendance")
	}
	svc.logger.Debug(fmt.Sprintf(
		"attendance marked: class=%s date=%s upserted=%d modified=%d",
		ma.ClassID, date.Format("2006-01-02"), res.UpsertedCount, res.ModifiedCount,
	))
	return res, nil
}

func (svc *service) QueryClassAttendance(ctx context.Context, classID string, date *time.Time) ([]ClassRecord, error) {
	if date != nil {
		day := core.NormalizeDate(*date)
		date = &day
	}
	rows, err := svc.repo.QueryClassAttendance(ctx, classID, date)
	if err != nil {
		return nil, errors.Wrap(err, "querying class attendance")
	}

	studentIDs := make(core.StringSet, len(rows))
	markerIDs := make(core.StringSet)
	for _, row := range rows {
		studentIDs[row.StudentID] = struct{}{}
		markerIDs[row.MarkedBy] = struct{}{}
	}
	dir, err := school.LoadDirectory(ctx, svc.schoolRepo, studentIDs.Values(), markerIDs.Values(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "resolving attendance references")
	}

	records := make([]ClassRecord, 0, len(rows))
	for _, row := range rows {
		student := dir.Student(row.StudentID)
		if student != nil {
			student.Email = "" // only name & roll number are shown
		}
		records = append(records, ClassRecord{
			ID:       row.ID,
			Student:  student,
			ClassID:  row.ClassID,
			Date:     row.Date,
			Status:   row.Status,
			MarkedBy: dir.Teacher(row.MarkedBy),
		})
	}
	return records, nil
}

func (svc *service) QueryStudentAttendance(ctx context.Context, studentID string) ([]StudentRecord, error) {
	rows, err := svc.repo.QueryStudentAttendance(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student attendance")
	}

	classIDs := make(core.StringSet)
	markerIDs := make(core.StringSet)
	for _, row := range rows {
		classIDs[row.ClassID] = struct{}{}
		markerIDs[row.MarkedBy] = struct{}{}
	}
	dir, err := school.LoadDirectory(ctx, svc.schoolRepo, nil, markerIDs.Values(), classIDs.Values())
	if err != nil {
		return nil, errors.Wrap(err, "resolving attendance references")
	}

	// missing references degrade to placeholders
	records := make([]StudentRecord, 0, len(rows))
	for _, row := range rows {
		rec := StudentRecord{
			Date:      row.Date,
			Status:    row.Status,
			ClassName: unknownClass,
			MarkedBy:  unknownMarker,
		}
		if class := dir.Class(row.ClassID); class != nil && class.Name != "" {
			rec.ClassName = class.Name
		}
		if marker := dir.Teacher(row.MarkedBy); marker != nil && marker.Name != "" {
			rec.MarkedBy = marker.Name
		}
		records = append(records, rec)
	}
	return records, nil
}
