package subject_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/school"
	. "github.com/trezcool/masomo-records/core/subject"
	"github.com/trezcool/masomo-records/storage/database/inmem"
	"github.com/trezcool/masomo-records/tests"
)

type fixture struct {
	svc        Service
	repo       Repository
	schoolRepo school.Repository
	class      school.Class
	other      school.Class
}

func setUp(t *testing.T) fixture {
	db := inmemdb.Open()
	f := fixture{
		repo:       inmemdb.NewSubjectRepository(db),
		schoolRepo: inmemdb.NewSchoolRepository(db),
	}
	f.svc = NewService(f.repo, f.schoolRepo, testutil.Logger())
	f.class = testutil.CreateClass(t, f.schoolRepo, "Form 1", "sch")
	f.other = testutil.CreateClass(t, f.schoolRepo, "Form 2", "sch")
	return f
}

func (f fixture) subject(t *testing.T, name, code string, class school.Class, teacherID ...string) Subject {
	sub := Subject{Name: name, Code: code, Sessions: "40", ClassID: class.ID, SchoolID: class.SchoolID}
	if len(teacherID) > 0 {
		sub.TeacherID = teacherID[0]
	}
	return testutil.CreateSubject(t, f.repo, sub)
}

func TestService_Create(t *testing.T) {
	f := setUp(t)
	ctx := context.Background()
	f.subject(t, "Maths", "MAT101", f.class)

	tests := []struct {
		name     string
		schoolID string
		subjects []NewSubject
		wantErr  error
		wantLen  int
	}{
		{name: "empty batch", schoolID: "sch", wantErr: &core.ValidationError{}},
		{
			name: "first code taken", schoolID: "sch",
			subjects: []NewSubject{{Name: "Maths II", Code: "MAT101"}, {Name: "Physics", Code: "PHY101"}},
			wantErr:  ErrCodeExists,
		},
		{
			name: "first code taken after trimming", schoolID: "sch",
			subjects: []NewSubject{{Name: "Maths II", Code: " MAT101 "}},
			wantErr:  ErrCodeExists,
		},
		{
			name: "same code in another school", schoolID: "sch2",
			subjects: []NewSubject{{Name: "Maths", Code: "MAT101"}},
			wantLen:  1,
		},
		{
			// only the first code is checked: a later duplicate goes through
			name: "later code taken", schoolID: "sch",
			subjects: []NewSubject{{Name: "Chemistry", Code: "CHE101"}, {Name: "Maths II", Code: "MAT101"}},
			wantLen:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := f.svc.Create(ctx, tt.schoolID, f.class.ID, tt.subjects)
			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				assert.Len(t, created, tt.wantLen)
				for _, sub := range created {
					assert.NotEmpty(t, sub.ID)
					assert.Equal(t, tt.schoolID, sub.SchoolID)
					assert.Equal(t, f.class.ID, sub.ClassID)
				}
			case *core.ValidationError:
				assert.IsType(t, want, errors.Cause(err))
			default:
				assert.Equal(t, want, errors.Cause(err))
			}
		})
	}
}

func TestService_queries(t *testing.T) {
	f := setUp(t)
	ctx := context.Background()
	teacher := testutil.CreateTeacher(t, f.schoolRepo, "Mr Mwangi", nil)
	maths := f.subject(t, "Maths", "MAT", f.class, teacher.ID)
	bio := f.subject(t, "Biology", "BIO", f.class)
	chem := f.subject(t, "Chemistry", "CHE", f.other)
	classRef := &school.ClassRef{ID: f.class.ID, Name: "Form 1"}

	ids := func(details []Detail) []string {
		out := make([]string, 0, len(details))
		for _, d := range details {
			out = append(out, d.ID)
		}
		return out
	}

	all, err := f.svc.QueryBySchool(ctx, "sch")
	require.NoError(t, err)
	assert.Equal(t, []string{maths.ID, bio.ID, chem.ID}, ids(all))

	inClass, err := f.svc.QueryByClass(ctx, f.class.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{maths.ID, bio.ID}, ids(inClass))
	assert.Equal(t, classRef, inClass[0].Class)

	free, err := f.svc.QueryUnassigned(ctx, f.class.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bio.ID}, ids(free))

	d, err := f.svc.Get(ctx, maths.ID)
	require.NoError(t, err)
	assert.Equal(t, Detail{
		ID: maths.ID, Name: "Maths", Code: "MAT", Sessions: "40", SchoolID: "sch",
		Class:   classRef,
		Teacher: &school.TeacherRef{ID: teacher.ID, Name: "Mr Mwangi"},
	}, d)

	_, err = f.svc.Get(ctx, "ghost")
	assert.Equal(t, ErrNotFound, errors.Cause(err))

	_, err = f.svc.QueryBySchool(ctx, "")
	assert.IsType(t, &core.ValidationError{}, errors.Cause(err))
}

func TestService_Delete(t *testing.T) {
	f := setUp(t)
	ctx := context.Background()
	now := core.NormalizeDate(time.Now())

	maths := f.subject(t, "Maths", "MAT", f.class)
	bio := f.subject(t, "Biology", "BIO", f.class)
	chem := f.subject(t, "Chemistry", "CHE", f.class)

	teacher := testutil.CreateTeacher(t, f.schoolRepo, "Mr Mwangi", nil, maths.ID, bio.ID, chem.ID)
	untouched := testutil.CreateTeacher(t, f.schoolRepo, "Mrs Kibet", nil, chem.ID)
	student := testutil.CreateStudent(t, f.schoolRepo, "Amani", 1, f.class.ID,
		[]school.ExamResult{{SubjectID: maths.ID, MarksObtained: 70}, {SubjectID: bio.ID, MarksObtained: 55}},
		[]school.SubjectAttendance{
			{Date: now, Status: "Present", SubjectID: bio.ID},
			{Date: now, Status: "Absent", SubjectID: maths.ID},
		},
	)

	deleted, report, err := f.svc.Delete(ctx, bio.ID)
	require.NoError(t, err)
	assert.Equal(t, bio, deleted)
	assert.Equal(t, CascadeReport{TeachersUpdated: 1, StudentsUpdated: 1}, report)

	// the teacher keeps their other subjects
	gotTeacher, err := f.schoolRepo.GetTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{maths.ID, chem.ID}, gotTeacher.TeachSubjects)
	gotUntouched, err := f.schoolRepo.GetTeacher(ctx, untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{chem.ID}, gotUntouched.TeachSubjects)

	// the student keeps their unrelated records
	gotStudent, err := f.schoolRepo.GetStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, []school.ExamResult{{SubjectID: maths.ID, MarksObtained: 70}}, gotStudent.ExamResults)
	assert.Equal(t, []school.SubjectAttendance{{Date: now, Status: "Absent", SubjectID: maths.ID}}, gotStudent.Attendance)

	_, err = f.repo.GetSubject(ctx, bio.ID)
	assert.Equal(t, ErrNotFound, err)

	_, _, err = f.svc.Delete(ctx, bio.ID)
	require.IsType(t, &core.NotFoundError{}, errors.Cause(err))
	assert.Equal(t, "Subject not found", err.Error())
}

func TestService_DeleteByClass(t *testing.T) {
	f := setUp(t)
	ctx := context.Background()
	now := core.NormalizeDate(time.Now())

	maths := f.subject(t, "Maths", "MAT", f.class)
	bio := f.subject(t, "Biology", "BIO", f.class)
	chem := f.subject(t, "Chemistry", "CHE", f.other)

	teacher := testutil.CreateTeacher(t, f.schoolRepo, "Mr Mwangi", nil, maths.ID, chem.ID)
	// enrolled in the other class: still blanked
	student := testutil.CreateStudent(t, f.schoolRepo, "Baraka", 2, f.other.ID,
		[]school.ExamResult{{SubjectID: chem.ID, MarksObtained: 90}},
		[]school.SubjectAttendance{{Date: now, Status: "Present", SubjectID: chem.ID}},
	)

	deleted, report, err := f.svc.DeleteByClass(ctx, f.class.ID)
	require.NoError(t, err)
	assert.Equal(t, []Subject{maths, bio}, deleted)
	assert.Equal(t, CascadeReport{TeachersUpdated: 1, StudentsUpdated: 1}, report)

	gotTeacher, err := f.schoolRepo.GetTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{chem.ID}, gotTeacher.TeachSubjects)

	gotStudent, err := f.schoolRepo.GetStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Nil(t, gotStudent.ExamResults)
	assert.Nil(t, gotStudent.Attendance)

	left, err := f.svc.QueryBySchool(ctx, "sch")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, chem.ID, left[0].ID)
}

func TestService_DeleteBySchool(t *testing.T) {
	f := setUp(t)
	ctx := context.Background()

	maths := f.subject(t, "Maths", "MAT", f.class)
	elsewhere := testutil.CreateSubject(t, f.repo, Subject{Name: "Maths", Code: "MAT", ClassID: "c9", SchoolID: "sch2"})
	student := testutil.CreateStudent(t, f.schoolRepo, "Amani", 1, f.class.ID,
		[]school.ExamResult{{SubjectID: maths.ID, MarksObtained: 70}}, nil,
	)

	deleted, _, err := f.svc.DeleteBySchool(ctx, "sch")
	require.NoError(t, err)
	assert.Equal(t, []Subject{maths}, deleted)

	gotStudent, err := f.schoolRepo.GetStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Nil(t, gotStudent.ExamResults)

	_, err = f.repo.GetSubject(ctx, elsewhere.ID)
	assert.NoError(t, err)

	// nothing matched: nobody is touched
	student = testutil.CreateStudent(t, f.schoolRepo, "Baraka", 2, f.class.ID,
		[]school.ExamResult{{SubjectID: elsewhere.ID, MarksObtained: 60}}, nil,
	)
	deleted, report, err := f.svc.DeleteBySchool(ctx, "sch")
	require.NoError(t, err)
	assert.Empty(t, deleted)
	assert.Equal(t, CascadeReport{}, report)
	gotStudent, err = f.schoolRepo.GetStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, gotStudent.ExamResults, 1)
}

// failingSchoolRepo fails the named cascade step.
type failingSchoolRepo struct {
	school.Repository
	failPull, failStudents bool
}

var errStore = errors.New("connection reset")

func (r failingSchoolRepo) PullTeacherSubjects(ctx context.Context, ids ...string) (int64, error) {
	if r.failPull {
		return 0, errStore
	}
	return r.Repository.PullTeacherSubjects(ctx, ids...)
}

func (r failingSchoolRepo) PullStudentSubjectRecords(ctx context.Context, id string) (int64, error) {
	if r.failStudents {
		return 0, errStore
	}
	return r.Repository.PullStudentSubjectRecords(ctx, id)
}

func (r failingSchoolRepo) ResetStudentSubjectRecords(ctx context.Context) (int64, error) {
	if r.failStudents {
		return 0, errStore
	}
	return r.Repository.ResetStudentSubjectRecords(ctx)
}

func TestService_cascadeFailures(t *testing.T) {
	tests := []struct {
		name         string
		failPull     bool
		failStudents bool
		bulk         bool
		wantStep     string
		wantReport   CascadeReport
	}{
		{name: "single: teachers", failPull: true, wantStep: StepPullTeacherSubjects},
		{name: "single: students", failStudents: true, wantStep: StepStudentRecords, wantReport: CascadeReport{TeachersUpdated: 1}},
		{name: "bulk: teachers", failPull: true, bulk: true, wantStep: StepPullTeacherSubjects},
		{name: "bulk: students", failStudents: true, bulk: true, wantStep: StepStudentRecords, wantReport: CascadeReport{TeachersUpdated: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setUp(t)
			ctx := context.Background()
			maths := f.subject(t, "Maths", "MAT", f.class)
			testutil.CreateTeacher(t, f.schoolRepo, "Mr Mwangi", nil, maths.ID)

			svc := NewService(f.repo, failingSchoolRepo{
				Repository:   f.schoolRepo,
				failPull:     tt.failPull,
				failStudents: tt.failStudents,
			}, testutil.Logger())

			var err error
			if tt.bulk {
				_, _, err = svc.DeleteByClass(ctx, f.class.ID)
			} else {
				_, _, err = svc.Delete(ctx, maths.ID)
			}

			var cErr *CascadeError
			require.ErrorAs(t, err, &cErr)
			assert.Equal(t, tt.wantStep, cErr.Step)
			assert.Equal(t, []Subject{maths}, cErr.Deleted)
			assert.Equal(t, tt.wantReport, cErr.Report)
			assert.ErrorIs(t, err, errStore)

			// no rollback: the subject stays deleted
			_, err = f.repo.GetSubject(ctx, maths.ID)
			assert.Equal(t, ErrNotFound, err)
		})
	}
}
