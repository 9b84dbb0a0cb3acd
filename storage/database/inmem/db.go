package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/masomo-records/core/attendance"
	"github.com/trezcool/masomo-records/core/complaint"
	"github.com/trezcool/masomo-records/core/school"
	"github.com/trezcool/masomo-records/core/subject"
)

type (
	// DB keeps every collection in memory. Rows are returned in insertion order.
	DB struct {
		class      *table[school.Class]
		teacher    *table[school.Teacher]
		student    *table[school.Student]
		subject    *table[subject.Subject]
		attendance *table[attendance.Attendance]
		complaint  *table[complaint.Complaint]
	}

	table[T any] struct {
		mutex sync.RWMutex
		rows  map[string]*T
		ids   []string
	}
)

func Open() *DB {
	return &DB{
		class:      newTable[school.Class](),
		teacher:    newTable[school.Teacher](),
		student:    newTable[school.Student](),
		subject:    newTable[subject.Subject](),
		attendance: newTable[attendance.Attendance](),
		complaint:  newTable[complaint.Complaint](),
	}
}

// Reset empties every collection.
func (db *DB) Reset() {
	db.class.reset()
	db.teacher.reset()
	db.student.reset()
	db.subject.reset()
	db.attendance.reset()
	db.complaint.reset()
}

func newID() string {
	return uuid.NewString()
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) reset() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.rows = make(map[string]*T)
	t.ids = nil
}

// the methods below expect the caller to hold the mutex

func (t *table[T]) insert(id string, row T) {
	if _, ok := t.rows[id]; !ok {
		t.ids = append(t.ids, id)
	}
	t.rows[id] = &row
}

func (t *table[T]) remove(id string) {
	if _, ok := t.rows[id]; !ok {
		return
	}
	delete(t.rows, id)
	for i, rid := range t.ids {
		if rid == id {
			t.ids = append(t.ids[:i], t.ids[i+1:]...)
			break
		}
	}
}

// each calls fn with every row, in insertion order; rows may be mutated in place.
func (t *table[T]) each(fn func(row *T)) {
	for _, id := range t.ids {
		fn(t.rows[id])
	}
}

func (t *table[T]) filter(match func(row T) bool) []T {
	rows := make([]T, 0)
	t.each(func(row *T) {
		if match(*row) {
			rows = append(rows, *row)
		}
	})
	return rows
}
