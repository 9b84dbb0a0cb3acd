package subject

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/school"
)

type Subject struct {
	ID        string `json:"_id"`
	Name      string `json:"subName"`
	Code      string `json:"subCode"`
	Sessions  string `json:"sessions"`
	ClassID   string `json:"sclassName"`
	SchoolID  string `json:"school"`
	TeacherID string `json:"teacher,omitempty"`
}

// Detail is a subject with its class & teacher resolved.
type Detail struct {
	ID       string             `json:"_id"`
	Name     string             `json:"subName"`
	Code     string             `json:"subCode"`
	Sessions string             `json:"sessions"`
	Class    *school.ClassRef   `json:"sclassName"`
	SchoolID string             `json:"school"`
	Teacher  *school.TeacherRef `json:"teacher,omitempty"`
}

// Filter narrows subject queries & bulk deletes. Blank fields match everything.
type Filter struct {
	SchoolID   string
	ClassID    string
	Unassigned bool // without a teacher
}

func (f Filter) IsEmpty() bool {
	return f.SchoolID == "" && f.ClassID == ""
}

// Match reports whether the subject satisfies every set field of f.
func (f Filter) Match(sub Subject) bool {
	if f.SchoolID != "" && sub.SchoolID != f.SchoolID {
		return false
	}
	if f.ClassID != "" && sub.ClassID != f.ClassID {
		return false
	}
	if f.Unassigned && sub.TeacherID != "" {
		return false
	}
	return true
}

type NewSubject struct {
	Name     string `json:"subName" validate:"required,notblank"`
	Code     string `json:"subCode" validate:"required,notblank"`
	Sessions string `json:"sessions"`
}

type NewSubjects struct {
	Subjects []NewSubject `json:"subjects" validate:"required,min=1,dive"`
}

func (ns NewSubjects) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}

// CascadeReport counts the documents touched by a subject delete cascade.
type CascadeReport struct {
	TeachersUpdated int64 `json:"teachersUpdated"`
	StudentsUpdated int64 `json:"studentsUpdated"`
}

func (nsub NewSubject) clean() NewSubject {
	return NewSubject{
		Name:     core.CleanString(nsub.Name),
		Code:     core.CleanString(nsub.Code),
		Sessions: core.CleanString(nsub.Sessions),
	}
}
