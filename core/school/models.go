package school

import "time"

type Class struct {
	ID       string `json:"_id" yaml:"id"`
	Name     string `json:"sclassName" yaml:"name"`
	SchoolID string `json:"school" yaml:"school"`
}

type Teacher struct {
	ID             string   `json:"_id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Email          string   `json:"email" yaml:"email"`
	SchoolID       string   `json:"school" yaml:"school"`
	ClassTeacherOf []string `json:"classTeacherOf" yaml:"classTeacherOf"`
	TeachSubjects  []string `json:"teachSubject" yaml:"teachSubject"`
}

// IsClassTeacherOf reports whether t may mark attendance for the class.
func (t Teacher) IsClassTeacherOf(classID string) bool {
	for _, id := range t.ClassTeacherOf {
		if id == classID {
			return true
		}
	}
	return false
}

type Student struct {
	ID          string              `json:"_id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	RollNum     int                 `json:"rollNum" yaml:"rollNum"`
	Email       string              `json:"email" yaml:"email"`
	ClassID     string              `json:"sclassName" yaml:"class"`
	SchoolID    string              `json:"school" yaml:"school"`
	ExamResults []ExamResult        `json:"examResult" yaml:"examResult"`
	Attendance  []SubjectAttendance `json:"attendance" yaml:"attendance"`
}

// ExamResult is a student's mark for one subject.
type ExamResult struct {
	SubjectID     string `json:"subName" yaml:"subject"`
	MarksObtained int    `json:"marksObtained" yaml:"marksObtained"`
}

// SubjectAttendance is a per-subject attendance entry embedded in a student.
type SubjectAttendance struct {
	Date      time.Time `json:"date" yaml:"date"`
	Status    string    `json:"status" yaml:"status"`
	SubjectID string    `json:"subName" yaml:"subject"`
}

// References embedded in enriched views.
type (
	StudentRef struct {
		ID      string `json:"_id"`
		Name    string `json:"name"`
		RollNum int    `json:"rollNum,omitempty"`
		Email   string `json:"email,omitempty"`
	}

	TeacherRef struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}

	ClassRef struct {
		ID   string `json:"_id"`
		Name string `json:"sclassName"`
	}
)

func (s Student) Ref() *StudentRef {
	return &StudentRef{ID: s.ID, Name: s.Name, RollNum: s.RollNum, Email: s.Email}
}

func (t Teacher) Ref() *TeacherRef {
	return &TeacherRef{ID: t.ID, Name: t.Name}
}

func (c Class) Ref() *ClassRef {
	return &ClassRef{ID: c.ID, Name: c.Name}
}
