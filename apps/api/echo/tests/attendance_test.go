package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/masomo-records/core/attendance"
	exportsvc "github.com/trezcool/masomo-records/services/export"
	"github.com/trezcool/masomo-records/tests"
)

func Test_attendanceApi_mark(t *testing.T) {
	db.Reset()

	class := testutil.CreateClass(t, schoolRepo, "Form 1", "sch")
	other := testutil.CreateClass(t, schoolRepo, "Form 2", "sch")
	teacher := testutil.CreateTeacher(t, schoolRepo, "Mwalimu", []string{class.ID})
	stranger := testutil.CreateTeacher(t, schoolRepo, "Stranger", []string{other.ID})
	amani := testutil.CreateStudent(t, schoolRepo, "Amani", 1, class.ID, nil, nil)
	baraka := testutil.CreateStudent(t, schoolRepo, "Baraka", 2, class.ID, nil, nil)
	outsider := testutil.CreateStudent(t, schoolRepo, "Outsider", 1, other.ID, nil, nil)

	body := func(teacherID, date string, records ...attendance.Record) []byte {
		return marchallObj(t, attendance.NewAttendance{TeacherID: teacherID, ClassID: class.ID, Date: date, Records: records})
	}
	present := func(id string) attendance.Record { return attendance.Record{StudentID: id, Status: attendance.StatusPresent} }
	absent := func(id string) attendance.Record { return attendance.Record{StudentID: id, Status: attendance.StatusAbsent} }
	saved := message(t, "Attendance saved successfully")

	tests := []httpTest{
		{
			name: "required fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"teacherId": "this field is required",
				"sclassId":  "this field is required",
				"date":      "this field is required",
			}),
		},
		{
			name: "invalid date", body: body(teacher.ID, "01/03/2024", present(amani.ID)), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": "date must be formatted as YYYY-MM-DD or RFC 3339"}),
		},
		{
			name: "not the class teacher", body: body(stranger.ID, "2024-03-01", present(amani.ID)), wantCode: http.StatusForbidden,
			wantData: message(t, "Only the class teacher can mark attendance for this class."),
		},
		{
			name: "unknown teacher", body: body("nobody", "2024-03-01", present(amani.ID)), wantCode: http.StatusForbidden,
			wantData: message(t, "Only the class teacher can mark attendance for this class."),
		},
		{
			name: "authorization checked before records", body: body(stranger.ID, "2024-03-01", present(outsider.ID)),
			wantCode: http.StatusForbidden,
			wantData: message(t, "Only the class teacher can mark attendance for this class."),
		},
		{
			name: "student from another class", body: body(teacher.ID, "2024-03-01", present(amani.ID), present(outsider.ID)),
			wantCode: http.StatusBadRequest,
			wantData: message(t, "Student "+outsider.ID+" does not belong to this class"),
		},
		{
			name: "invalid status", body: body(teacher.ID, "2024-03-01", attendance.Record{StudentID: amani.ID, Status: "Late"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"records[0].status": "status must be one of [Present Absent]"}),
		},
		{name: "no records", body: body(teacher.ID, "2024-03-01"), wantData: saved},
		{name: "marked", body: body(teacher.ID, "2024-03-01", present(amani.ID), absent(baraka.ID)), wantData: saved},
		{name: "re-marked later that day", body: body(teacher.ID, "2024-03-01T16:30:00Z", absent(amani.ID)), wantData: saved},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/attendance"
	}
	runHTTPTests(t, tests)

	// one row per student & day; the last mark wins
	records, err := attSvc.QueryClassAttendance(context.Background(), class.ID, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	got := make(map[string]attendance.Status, len(records))
	for _, rec := range records {
		got[rec.Student.ID] = rec.Status
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rec.Date)
	}
	assert.Equal(t, map[string]attendance.Status{amani.ID: attendance.StatusAbsent, baraka.ID: attendance.StatusAbsent}, got)
}

func markAttendance(t *testing.T, teacherID, classID string, date time.Time, records ...attendance.Record) {
	_, err := attSvc.MarkClassAttendance(context.Background(), attendance.MarkAttendance{
		TeacherID: teacherID,
		ClassID:   classID,
		Date:      date,
		Records:   records,
	})
	if err != nil {
		t.Fatalf("MarkClassAttendance(): %v", err)
	}
}

func Test_attendanceApi_queryClass(t *testing.T) {
	db.Reset()

	class := testutil.CreateClass(t, schoolRepo, "Form 1", "sch")
	teacher := testutil.CreateTeacher(t, schoolRepo, "Mwalimu", []string{class.ID})
	amani := testutil.CreateStudent(t, schoolRepo, "Amani", 1, class.ID, nil, nil)
	baraka := testutil.CreateStudent(t, schoolRepo, "Baraka", 2, class.ID, nil, nil)

	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	markAttendance(t, teacher.ID, class.ID, day1,
		attendance.Record{StudentID: amani.ID, Status: attendance.StatusPresent},
		attendance.Record{StudentID: baraka.ID, Status: attendance.StatusAbsent},
	)
	markAttendance(t, teacher.ID, class.ID, day2, attendance.Record{StudentID: amani.ID, Status: attendance.StatusAbsent})

	t.Run("invalid date filter", func(t *testing.T) {
		runHTTPTests(t, []httpTest{{
			name: "400", method: http.MethodGet, path: "/v1/classes/" + class.ID + "/attendance?date=lol",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": "date must be formatted as YYYY-MM-DD or RFC 3339"}),
		}})
	})

	tests := []struct {
		name    string
		path    string
		wantLen int
	}{
		{name: "all days", path: "/v1/classes/" + class.ID + "/attendance", wantLen: 3},
		{name: "one day", path: "/v1/classes/" + class.ID + "/attendance?date=2024-03-02", wantLen: 1},
		{name: "day without records", path: "/v1/classes/" + class.ID + "/attendance?date=2024-04-01", wantLen: 0},
		{name: "unknown class", path: "/v1/classes/lol/attendance", wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			var records []attendance.ClassRecord
			decode(t, rec, &records)
			assert.Len(t, records, tt.wantLen)
			for _, r := range records {
				require.NotNil(t, r.Student)
				assert.Empty(t, r.Student.Email)
				assert.NotEmpty(t, r.Student.Name)
				require.NotNil(t, r.MarkedBy)
				assert.Equal(t, teacher.Name, r.MarkedBy.Name)
			}
		})
	}
}

func Test_attendanceApi_exportClass(t *testing.T) {
	db.Reset()

	class := testutil.CreateClass(t, schoolRepo, "Form 1", "sch")
	teacher := testutil.CreateTeacher(t, schoolRepo, "Mwalimu", []string{class.ID})
	amani := testutil.CreateStudent(t, schoolRepo, "Amani", 7, class.ID, nil, nil)
	markAttendance(t, teacher.ID, class.ID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		attendance.Record{StudentID: amani.ID, Status: attendance.StatusPresent},
	)

	req, rec := newRequest(http.MethodGet, "/v1/classes/"+class.ID+"/attendance/export?date=2024-03-01")
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, exportsvc.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t,
		`attachment; filename="attendance-`+class.ID+`-2024-03-01.xlsx"`,
		rec.Header().Get("Content-Disposition"),
	)

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(exportsvc.AttendanceSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-03-01", "7", "Amani", "Present", "Mwalimu"}, rows[1])
}

func Test_attendanceApi_queryStudent(t *testing.T) {
	db.Reset()

	class := testutil.CreateClass(t, schoolRepo, "Form 1", "sch")
	teacher := testutil.CreateTeacher(t, schoolRepo, "Mwalimu", []string{class.ID})
	amani := testutil.CreateStudent(t, schoolRepo, "Amani", 1, class.ID, nil, nil)

	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	present := attendance.Record{StudentID: amani.ID, Status: attendance.StatusPresent}
	markAttendance(t, teacher.ID, class.ID, day1, present)
	markAttendance(t, teacher.ID, class.ID, day2, attendance.Record{StudentID: amani.ID, Status: attendance.StatusAbsent})

	runHTTPTests(t, []httpTest{
		{
			name: "newest first", method: http.MethodGet, path: "/v1/students/" + amani.ID + "/attendance",
			wantData: marchallList(t,
				attendance.StudentRecord{Date: day2, Status: attendance.StatusAbsent, ClassName: class.Name, MarkedBy: teacher.Name},
				attendance.StudentRecord{Date: day1, Status: attendance.StatusPresent, ClassName: class.Name, MarkedBy: teacher.Name},
			),
		},
		{
			name: "unknown student", method: http.MethodGet, path: "/v1/students/lol/attendance",
			wantData: marchallList(t, []interface{}{}...),
		},
	})
}
