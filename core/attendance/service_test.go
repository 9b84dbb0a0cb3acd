package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-records/core"
	. "github.com/trezcool/masomo-records/core/attendance"
	"github.com/trezcool/masomo-records/core/school"
	"github.com/trezcool/masomo-records/storage/database/inmem"
	"github.com/trezcool/masomo-records/tests"
)

type fixture struct {
	svc        Service
	repo       Repository
	schoolRepo school.Repository

	class, otherClass school.Class
	classTeacher      school.Teacher
	otherTeacher      school.Teacher
	amani, baraka     school.Student
	outsider          school.Student
}

func setUp(t *testing.T) fixture {
	db := inmemdb.Open()
	f := fixture{
		repo:       inmemdb.NewAttendanceRepository(db),
		schoolRepo: inmemdb.NewSchoolRepository(db),
	}
	f.svc = NewService(f.repo, f.schoolRepo, testutil.Logger())

	f.class = testutil.CreateClass(t, f.schoolRepo, "Form 1", "sch")
	f.otherClass = testutil.CreateClass(t, f.schoolRepo, "Form 2", "sch")
	f.classTeacher = testutil.CreateTeacher(t, f.schoolRepo, "Mrs Kibet", []string{f.otherClass.ID, f.class.ID})
	f.otherTeacher = testutil.CreateTeacher(t, f.schoolRepo, "Mr Mwangi", []string{f.otherClass.ID})
	f.amani = testutil.CreateStudent(t, f.schoolRepo, "Amani", 1, f.class.ID, nil, nil)
	f.baraka = testutil.CreateStudent(t, f.schoolRepo, "Baraka", 2, f.class.ID, nil, nil)
	f.outsider = testutil.CreateStudent(t, f.schoolRepo, "Chege", 3, f.otherClass.ID, nil, nil)
	return f
}

func day(s string) time.Time {
	d, err := core.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestService_MarkClassAttendance(t *testing.T) {
	f := setUp(t)
	date := day("2024-03-04")

	tests := []struct {
		name        string
		ma          MarkAttendance
		wantErrType interface{}
		wantErr     string
		wantRes     core.UpdateResult
	}{
		{
			name: "unknown teacher",
			ma: MarkAttendance{
				TeacherID: "nobody", ClassID: f.class.ID, Date: date,
				Records: []Record{{StudentID: f.amani.ID, Status: StatusPresent}},
			},
			wantErrType: &core.PermissionError{},
			wantErr:     "Only the class teacher can mark attendance for this class.",
		},
		{
			name: "not the class teacher, whatever the records",
			ma: MarkAttendance{
				TeacherID: f.otherTeacher.ID, ClassID: f.class.ID, Date: date,
				Records: []Record{{StudentID: "ghost", Status: "Late"}},
			},
			wantErrType: &core.PermissionError{},
			wantErr:     "Only the class teacher can mark attendance for this class.",
		},
		{
			name: "student outside the class",
			ma: MarkAttendance{
				TeacherID: f.classTeacher.ID, ClassID: f.class.ID, Date: date,
				Records: []Record{
					{StudentID: f.amani.ID, Status: StatusPresent},
					{StudentID: f.outsider.ID, Status: StatusPresent},
				},
			},
			wantErrType: &core.ValidationError{},
			wantErr:     "Student " + f.outsider.ID + " does not belong to this class",
		},
		{
			name: "unknown status",
			ma: MarkAttendance{
				TeacherID: f.classTeacher.ID, ClassID: f.class.ID, Date: date,
				Records: []Record{{StudentID: f.amani.ID, Status: "Late"}},
			},
			wantErrType: &core.ValidationError{},
		},
		{
			name: "nothing to mark",
			ma:   MarkAttendance{TeacherID: f.classTeacher.ID, ClassID: f.class.ID, Date: date},
		},
		{
			name: "marked",
			ma: MarkAttendance{
				TeacherID: f.classTeacher.ID, ClassID: f.class.ID, Date: date,
				Records: []Record{
					{StudentID: f.amani.ID, Status: StatusPresent},
					{StudentID: f.baraka.ID, Status: StatusAbsent},
				},
			},
			wantRes: core.UpdateResult{UpsertedCount: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.MarkClassAttendance(context.Background(), tt.ma)
			if tt.wantErrType != nil {
				require.Error(t, err)
				assert.IsType(t, tt.wantErrType, errors.Cause(err))
				if tt.wantErr != "" {
					assert.Equal(t, tt.wantErr, err.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRes, res)
		})
	}

	// failed validations wrote nothing
	rows, err := f.repo.QueryClassAttendance(context.Background(), f.class.ID, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestService_MarkClassAttendance_invalidStatusField(t *testing.T) {
	f := setUp(t)

	_, err := f.svc.MarkClassAttendance(context.Background(), MarkAttendance{
		TeacherID: f.classTeacher.ID, ClassID: f.class.ID, Date: day("2024-03-04"),
		Records: []Record{{StudentID: f.amani.ID, Status: StatusPresent}, {StudentID: f.baraka.ID, Status: "present"}},
	})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "records[1].status", vErr.Fields[0].Field)
}

func TestService_MarkClassAttendance_lastWriteWins(t *testing.T) {
	f := setUp(t)
	ctx := context.Background()
	morning := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 4, 17, 30, 0, 0, time.UTC)

	_, err := f.svc.MarkClassAttendance(ctx, MarkAttendance{
		TeacherID: f.classTeacher.ID, ClassID: f.class.ID, Date: morning,
		Records: []Record{{StudentID: f.amani.ID, Status: StatusPresent}},
	})
	require.NoError(t, err)

	res, err := f.svc.MarkClassAttendance(ctx, MarkAttendance{
		TeacherID: f.classTeacher.ID, ClassID: f.class.ID, Date: evening,
		Records: []Record{{StudentID: f.amani.ID, Status: StatusAbsent}},
	})
	require.NoError(t, err)
	assert.Equal(t, core.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, res)

	rows, err := f.repo.QueryClassAttendance(ctx, f.class.ID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, StatusAbsent, rows[0].Status)
	assert.Equal(t, day("2024-03-04"), rows[0].Date)
}

func TestService_QueryClassAttendance(t *testing.T) {
	f := setUp(t)
	ctx := context.Background()
	mon, tue := day("2024-03-04"), day("2024-03-05")

	for _, d := range []time.Time{mon, tue} {
		_, err := f.svc.MarkClassAttendance(ctx, MarkAttendance{
			TeacherID: f.classTeacher.ID, ClassID: f.class.ID, Date: d,
			Records: []Record{{StudentID: f.amani.ID, Status: StatusPresent}},
		})
		require.NoError(t, err)
	}

	all, err := f.svc.QueryClassAttendance(ctx, f.class.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	at := tue.Add(10 * time.Hour) // any time of the day matches
	records, err := f.svc.QueryClassAttendance(ctx, f.class.ID, &at)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, tue, rec.Date)
	assert.Equal(t, &school.StudentRef{ID: f.amani.ID, Name: "Amani", RollNum: 1}, rec.Student)
	assert.Equal(t, &school.TeacherRef{ID: f.classTeacher.ID, Name: "Mrs Kibet"}, rec.MarkedBy)

	none, err := f.svc.QueryClassAttendance(ctx, f.otherClass.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestService_QueryStudentAttendance(t *testing.T) {
	f := setUp(t)
	ctx := context.Background()

	_, err := f.repo.UpsertAttendance(ctx,
		Attendance{StudentID: f.amani.ID, ClassID: f.class.ID, Date: day("2024-03-04"), Status: StatusPresent, MarkedBy: f.classTeacher.ID},
		Attendance{StudentID: f.amani.ID, ClassID: "gone", Date: day("2024-03-06"), Status: StatusAbsent, MarkedBy: "gone"},
		Attendance{StudentID: f.amani.ID, ClassID: f.class.ID, Date: day("2024-03-05"), Status: StatusAbsent, MarkedBy: f.classTeacher.ID},
		Attendance{StudentID: f.baraka.ID, ClassID: f.class.ID, Date: day("2024-03-05"), Status: StatusAbsent, MarkedBy: f.classTeacher.ID},
	)
	require.NoError(t, err)

	records, err := f.svc.QueryStudentAttendance(ctx, f.amani.ID)
	require.NoError(t, err)
	assert.Equal(t, []StudentRecord{
		{Date: day("2024-03-06"), Status: StatusAbsent, ClassName: "Unknown Class", MarkedBy: "Unknown"},
		{Date: day("2024-03-05"), Status: StatusAbsent, ClassName: "Form 1", MarkedBy: "Mrs Kibet"},
		{Date: day("2024-03-04"), Status: StatusPresent, ClassName: "Form 1", MarkedBy: "Mrs Kibet"},
	}, records)
}
