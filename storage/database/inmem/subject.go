package inmemdb

import (
	"context"

	"github.com/trezcool/masomo-records/core/subject"
)

type subjectRepository struct {
	db *table[subject.Subject]
}

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db.subject}
}

func (repo *subjectRepository) CreateSubjects(_ context.Context, subjects ...subject.Subject) ([]subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	created := make([]subject.Subject, 0, len(subjects))
	for _, sub := range subjects {
		if sub.ID == "" {
			sub.ID = newID()
		}
		repo.db.insert(sub.ID, sub)
		created = append(created, sub)
	}
	return created, nil
}

func (repo *subjectRepository) SubjectCodeExists(_ context.Context, schoolID, code string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, id := range repo.db.ids {
		if sub := repo.db.rows[id]; sub.SchoolID == schoolID && sub.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (repo *subjectRepository) QuerySubjects(_ context.Context, filter subject.Filter) ([]subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.db.filter(filter.Match), nil
}

func (repo *subjectRepository) GetSubject(_ context.Context, id string) (subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.rows[id]; ok {
		return *sub, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) DeleteSubject(_ context.Context, id string) (subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub, ok := repo.db.rows[id]
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	repo.db.remove(id)
	return *sub, nil
}

func (repo *subjectRepository) DeleteSubjects(_ context.Context, filter subject.Filter) ([]subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	deleted := repo.db.filter(filter.Match)
	for _, sub := range deleted {
		repo.db.remove(sub.ID)
	}
	return deleted, nil
}
