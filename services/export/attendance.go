package exportsvc

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/masomo-records/core/attendance"
)

const (
	AttendanceSheet = "Attendance"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	unknown = "Unknown"
)

var attendanceHeader = []interface{}{"Date", "Roll No", "Student", "Status", "Marked By"}

// AttendanceWorkbook lays the class attendance rows out as a register, one row per record.
// The caller must Close the returned file.
func AttendanceWorkbook(records []attendance.ClassRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), AttendanceSheet); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "naming sheet")
	}

	if err := fillAttendanceSheet(f, records); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func fillAttendanceSheet(f *excelize.File, records []attendance.ClassRecord) error {
	if err := f.SetSheetRow(AttendanceSheet, "A1", &attendanceHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	if err = f.SetCellStyle(AttendanceSheet, "A1", "E1", bold); err != nil {
		return errors.Wrap(err, "styling header")
	}
	if err = f.SetColWidth(AttendanceSheet, "A", "E", 18); err != nil {
		return errors.Wrap(err, "sizing columns")
	}

	for i, rec := range records {
		rollNum, student, marker := "", unknown, unknown
		if rec.Student != nil {
			student = rec.Student.Name
			if rec.Student.RollNum != 0 {
				rollNum = strconv.Itoa(rec.Student.RollNum)
			}
		}
		if rec.MarkedBy != nil {
			marker = rec.MarkedBy.Name
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "locating row")
		}
		row := []interface{}{rec.Date.Format("2006-01-02"), rollNum, student, string(rec.Status), marker}
		if err = f.SetSheetRow(AttendanceSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}
	return nil
}
