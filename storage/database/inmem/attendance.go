package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/attendance"
)

type attendanceRepository struct {
	db *table[attendance.Attendance]
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) UpsertAttendance(_ context.Context, rows ...attendance.Attendance) (core.UpdateResult, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var res core.UpdateResult
	for _, row := range rows {
		var existing *attendance.Attendance
		repo.db.each(func(a *attendance.Attendance) {
			if a.StudentID == row.StudentID && a.ClassID == row.ClassID && a.Date.Equal(row.Date) {
				existing = a
			}
		})

		if existing == nil {
			row.ID = newID()
			repo.db.insert(row.ID, row)
			res.UpsertedCount++
			continue
		}
		res.MatchedCount++
		if existing.Status != row.Status || existing.MarkedBy != row.MarkedBy {
			existing.Status = row.Status
			existing.MarkedBy = row.MarkedBy
			res.ModifiedCount++
		}
	}
	return res, nil
}

func (repo *attendanceRepository) QueryClassAttendance(_ context.Context, classID string, date *time.Time) ([]attendance.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.db.filter(func(a attendance.Attendance) bool {
		return a.ClassID == classID && (date == nil || a.Date.Equal(*date))
	}), nil
}

func (repo *attendanceRepository) QueryStudentAttendance(_ context.Context, studentID string) ([]attendance.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := repo.db.filter(func(a attendance.Attendance) bool { return a.StudentID == studentID })
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })
	return rows, nil
}
