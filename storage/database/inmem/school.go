package inmemdb

import (
	"context"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/school"
)

type schoolRepository struct {
	db *DB
}

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CreateClass(_ context.Context, class school.Class) (school.Class, error) {
	repo.db.class.mutex.Lock()
	defer repo.db.class.mutex.Unlock()

	if class.ID == "" {
		class.ID = newID()
	}
	repo.db.class.insert(class.ID, class)
	return class, nil
}

func (repo *schoolRepository) CreateTeacher(_ context.Context, teacher school.Teacher) (school.Teacher, error) {
	repo.db.teacher.mutex.Lock()
	defer repo.db.teacher.mutex.Unlock()

	if teacher.ID == "" {
		teacher.ID = newID()
	}
	teacher = cloneTeacher(teacher)
	repo.db.teacher.insert(teacher.ID, teacher)
	return cloneTeacher(teacher), nil
}

func (repo *schoolRepository) CreateStudent(_ context.Context, student school.Student) (school.Student, error) {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()

	if student.ID == "" {
		student.ID = newID()
	}
	student = cloneStudent(student)
	repo.db.student.insert(student.ID, student)
	return cloneStudent(student), nil
}

func (repo *schoolRepository) GetClass(_ context.Context, id string) (school.Class, error) {
	repo.db.class.mutex.RLock()
	defer repo.db.class.mutex.RUnlock()

	if class, ok := repo.db.class.rows[id]; ok {
		return *class, nil
	}
	return school.Class{}, school.ErrNotFound
}

func (repo *schoolRepository) GetTeacher(_ context.Context, id string) (school.Teacher, error) {
	repo.db.teacher.mutex.RLock()
	defer repo.db.teacher.mutex.RUnlock()

	if teacher, ok := repo.db.teacher.rows[id]; ok {
		return cloneTeacher(*teacher), nil
	}
	return school.Teacher{}, school.ErrNotFound
}

func (repo *schoolRepository) GetStudent(_ context.Context, id string) (school.Student, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	if student, ok := repo.db.student.rows[id]; ok {
		return cloneStudent(*student), nil
	}
	return school.Student{}, school.ErrNotFound
}

func (repo *schoolRepository) QueryClassStudentIDs(_ context.Context, classID string) ([]string, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	ids := make([]string, 0)
	repo.db.student.each(func(s *school.Student) {
		if s.ClassID == classID {
			ids = append(ids, s.ID)
		}
	})
	return ids, nil
}

func (repo *schoolRepository) QueryStudentsByID(_ context.Context, ids ...string) ([]school.Student, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	set := core.NewStringSet(ids...)
	students := repo.db.student.filter(func(s school.Student) bool { return set.Has(s.ID) })
	for i := range students {
		students[i] = cloneStudent(students[i])
	}
	return students, nil
}

func (repo *schoolRepository) QueryTeachersByID(_ context.Context, ids ...string) ([]school.Teacher, error) {
	repo.db.teacher.mutex.RLock()
	defer repo.db.teacher.mutex.RUnlock()

	set := core.NewStringSet(ids...)
	teachers := repo.db.teacher.filter(func(t school.Teacher) bool { return set.Has(t.ID) })
	for i := range teachers {
		teachers[i] = cloneTeacher(teachers[i])
	}
	return teachers, nil
}

func (repo *schoolRepository) QueryClassesByID(_ context.Context, ids ...string) ([]school.Class, error) {
	repo.db.class.mutex.RLock()
	defer repo.db.class.mutex.RUnlock()

	set := core.NewStringSet(ids...)
	return repo.db.class.filter(func(c school.Class) bool { return set.Has(c.ID) }), nil
}

func (repo *schoolRepository) PullTeacherSubjects(_ context.Context, subjectIDs ...string) (int64, error) {
	repo.db.teacher.mutex.Lock()
	defer repo.db.teacher.mutex.Unlock()

	pulled := core.NewStringSet(subjectIDs...)
	var updated int64
	repo.db.teacher.each(func(t *school.Teacher) {
		kept := make([]string, 0, len(t.TeachSubjects))
		for _, id := range t.TeachSubjects {
			if !pulled.Has(id) {
				kept = append(kept, id)
			}
		}
		if len(kept) != len(t.TeachSubjects) {
			t.TeachSubjects = kept
			updated++
		}
	})
	return updated, nil
}

func (repo *schoolRepository) PullStudentSubjectRecords(_ context.Context, subjectID string) (int64, error) {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()

	var updated int64
	repo.db.student.each(func(s *school.Student) {
		results := make([]school.ExamResult, 0, len(s.ExamResults))
		for _, r := range s.ExamResults {
			if r.SubjectID != subjectID {
				results = append(results, r)
			}
		}
		attendance := make([]school.SubjectAttendance, 0, len(s.Attendance))
		for _, a := range s.Attendance {
			if a.SubjectID != subjectID {
				attendance = append(attendance, a)
			}
		}
		if len(results) != len(s.ExamResults) || len(attendance) != len(s.Attendance) {
			s.ExamResults = results
			s.Attendance = attendance
			updated++
		}
	})
	return updated, nil
}

func (repo *schoolRepository) ResetStudentSubjectRecords(_ context.Context) (int64, error) {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()

	var updated int64
	repo.db.student.each(func(s *school.Student) {
		if s.ExamResults != nil || s.Attendance != nil {
			s.ExamResults = nil
			s.Attendance = nil
			updated++
		}
	})
	return updated, nil
}

// stored rows never share slices with callers

func cloneTeacher(t school.Teacher) school.Teacher {
	t.ClassTeacherOf = cloneSlice(t.ClassTeacherOf)
	t.TeachSubjects = cloneSlice(t.TeachSubjects)
	return t
}

func cloneStudent(s school.Student) school.Student {
	s.ExamResults = cloneSlice(s.ExamResults)
	s.Attendance = cloneSlice(s.Attendance)
	return s
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
