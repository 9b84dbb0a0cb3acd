package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/school"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

var Statuses = []Status{StatusPresent, StatusAbsent}

func (s Status) Valid() bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Attendance is one row per (student, class, date).
type Attendance struct {
	ID        string    `json:"_id"`
	StudentID string    `json:"student"`
	ClassID   string    `json:"sclass"`
	Date      time.Time `json:"date"` // UTC midnight
	Status    Status    `json:"status"`
	MarkedBy  string    `json:"markedBy"`
}

// Record is a single student's status within a MarkAttendance request.
type Record struct {
	StudentID string `json:"studentId"`
	Status    Status `json:"status"`
}

// NewAttendance is the payload a class teacher submits.
// Records are checked by the service, after the caller is authorized.
type NewAttendance struct {
	TeacherID string   `json:"teacherId" validate:"required,notblank"`
	ClassID   string   `json:"sclassId" validate:"required,notblank"`
	Date      string   `json:"date" validate:"required,notblank"`
	Records   []Record `json:"records"`
}

func (na NewAttendance) Validate(validate *validator.Validate) (MarkAttendance, error) {
	if err := validate.Struct(na); err != nil {
		return MarkAttendance{}, err
	}
	date, err := core.ParseDate(na.Date)
	if err != nil {
		return MarkAttendance{}, core.NewValidationError(nil, core.FieldError{Field: "date", Error: err.Error()})
	}
	return MarkAttendance{
		TeacherID: core.CleanString(na.TeacherID),
		ClassID:   core.CleanString(na.ClassID),
		Date:      date,
		Records:   na.Records,
	}, nil
}

// MarkAttendance contains what a class teacher submits for one day.
type MarkAttendance struct {
	TeacherID string
	ClassID   string
	Date      time.Time
	Records   []Record
}

// ClassRecord is an attendance row with its student & marker resolved.
type ClassRecord struct {
	ID       string             `json:"_id"`
	Student  *school.StudentRef `json:"student"`
	ClassID  string             `json:"sclass"`
	Date     time.Time          `json:"date"`
	Status   Status             `json:"status"`
	MarkedBy *school.TeacherRef `json:"markedBy"`
}

// StudentRecord is an attendance row as shown in a student's history.
type StudentRecord struct {
	Date      time.Time `json:"date"`
	Status    Status    `json:"status"`
	ClassName string    `json:"sclassName"`
	MarkedBy  string    `json:"markedBy"`
}
