package testutil

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/school"
	"github.com/trezcool/masomo-records/core/subject"
	logsvc "github.com/trezcool/masomo-records/services/logger"
)

// Logger returns a logger that neither prints nor reports.
func Logger() core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), &core.Config{Env: "TEST", TestMode: true})
	logger.Enable(false)
	return logger
}

func CreateClass(t *testing.T, repo school.Repository, name, schoolID string) school.Class {
	class, err := repo.CreateClass(context.Background(), school.Class{Name: name, SchoolID: schoolID})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return class
}

func CreateTeacher(t *testing.T, repo school.Repository, name string, classTeacherOf []string, subjectIDs ...string) school.Teacher {
	teacher, err := repo.CreateTeacher(context.Background(), school.Teacher{
		Name:           name,
		ClassTeacherOf: classTeacherOf,
		TeachSubjects:  subjectIDs,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return teacher
}

func CreateStudent(
	t *testing.T,
	repo school.Repository,
	name string,
	rollNum int,
	classID string,
	results []school.ExamResult,
	attendance []school.SubjectAttendance,
) school.Student {
	student, err := repo.CreateStudent(context.Background(), school.Student{
		Name:        name,
		RollNum:     rollNum,
		Email:       strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@test.cd",
		ClassID:     classID,
		ExamResults: results,
		Attendance:  attendance,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return student
}

func CreateSubject(t *testing.T, repo subject.Repository, sub subject.Subject) subject.Subject {
	created, err := repo.CreateSubjects(context.Background(), sub)
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return created[0]
}
