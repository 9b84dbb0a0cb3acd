package school

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")

// Repository is the store of the people & classes other records point to.
// It also carries the reference cleanups needed when a subject goes away.
type Repository interface {
	CreateClass(ctx context.Context, class Class) (Class, error)
	CreateTeacher(ctx context.Context, teacher Teacher) (Teacher, error)
	CreateStudent(ctx context.Context, student Student) (Student, error)

	GetClass(ctx context.Context, id string) (Class, error)
	GetTeacher(ctx context.Context, id string) (Teacher, error)
	GetStudent(ctx context.Context, id string) (Student, error)
	// QueryClassStudentIDs returns the ids of all students belonging to the class.
	QueryClassStudentIDs(ctx context.Context, classID string) ([]string, error)
	QueryStudentsByID(ctx context.Context, ids ...string) ([]Student, error)
	QueryTeachersByID(ctx context.Context, ids ...string) ([]Teacher, error)
	QueryClassesByID(ctx context.Context, ids ...string) ([]Class, error)

	// PullTeacherSubjects removes the subject ids from every teacher's subject set,
	// leaving their other subjects untouched. It returns the number of teachers updated.
	PullTeacherSubjects(ctx context.Context, subjectIDs ...string) (int64, error)
	// PullStudentSubjectRecords removes the exam results and attendance entries
	// referencing the subject from every student. It returns the number of students updated.
	PullStudentSubjectRecords(ctx context.Context, subjectID string) (int64, error)
	// ResetStudentSubjectRecords blanks every student's exam results and attendance entries.
	ResetStudentSubjectRecords(ctx context.Context) (int64, error)
}

// Directory resolves references in bulk, for enriching views.
type Directory struct {
	Students map[string]Student
	Teachers map[string]Teacher
	Classes  map[string]Class
}

// LoadDirectory fetches the referenced students, teachers and classes in one pass per collection.
func LoadDirectory(ctx context.Context, repo Repository, studentIDs, teacherIDs, classIDs []string) (Directory, error) {
	dir := Directory{
		Students: make(map[string]Student),
		Teachers: make(map[string]Teacher),
		Classes:  make(map[string]Class),
	}
	if len(studentIDs) > 0 {
		students, err := repo.QueryStudentsByID(ctx, studentIDs...)
		if err != nil {
			return dir, err
		}
		for _, s := range students {
			dir.Students[s.ID] = s
		}
	}
	if len(teacherIDs) > 0 {
		teachers, err := repo.QueryTeachersByID(ctx, teacherIDs...)
		if err != nil {
			return dir, err
		}
		for _, t := range teachers {
			dir.Teachers[t.ID] = t
		}
	}
	if len(classIDs) > 0 {
		classes, err := repo.QueryClassesByID(ctx, classIDs...)
		if err != nil {
			return dir, err
		}
		for _, c := range classes {
			dir.Classes[c.ID] = c
		}
	}
	return dir, nil
}

func (d Directory) Student(id string) *StudentRef {
	if s, ok := d.Students[id]; ok {
		return s.Ref()
	}
	return nil
}

func (d Directory) Teacher(id string) *TeacherRef {
	if t, ok := d.Teachers[id]; ok {
		return t.Ref()
	}
	return nil
}

func (d Directory) Class(id string) *ClassRef {
	if c, ok := d.Classes[id]; ok {
		return c.Ref()
	}
	return nil
}
