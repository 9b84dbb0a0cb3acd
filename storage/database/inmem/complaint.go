package inmemdb

import (
	"context"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/complaint"
)

type complaintRepository struct {
	db *table[complaint.Complaint]
}

func NewComplaintRepository(db *DB) complaint.Repository {
	return &complaintRepository{db: db.complaint}
}

func (repo *complaintRepository) CreateComplaint(_ context.Context, c complaint.Complaint) (complaint.Complaint, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = newID()
	repo.db.insert(c.ID, c)
	return c, nil
}

func (repo *complaintRepository) QueryComplaintsBySchool(_ context.Context, schoolID string) ([]complaint.Complaint, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.db.filter(func(c complaint.Complaint) bool { return c.SchoolID == schoolID }), nil
}

func (repo *complaintRepository) UpdateComplaintStatus(_ context.Context, id string, status complaint.Status) (complaint.Complaint, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c, ok := repo.db.rows[id]
	if !ok {
		return complaint.Complaint{}, complaint.ErrNotFound
	}
	c.Status = status
	return *c, nil
}

func (repo *complaintRepository) UpdateComplaintsStatus(_ context.Context, ids []string, status complaint.Status) (core.UpdateResult, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var res core.UpdateResult
	for id := range core.NewStringSet(ids...) {
		c, ok := repo.db.rows[id]
		if !ok {
			continue
		}
		res.MatchedCount++
		if c.Status != status {
			c.Status = status
			res.ModifiedCount++
		}
	}
	return res, nil
}

func (repo *complaintRepository) DeleteComplaint(_ context.Context, id string) (complaint.Complaint, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c, ok := repo.db.rows[id]
	if !ok {
		return complaint.Complaint{}, complaint.ErrNotFound
	}
	repo.db.remove(id)
	return *c, nil
}

func (repo *complaintRepository) DeleteComplaintsBySchool(_ context.Context, schoolID string) (core.DeleteResult, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var res core.DeleteResult
	for _, c := range repo.db.filter(func(c complaint.Complaint) bool { return c.SchoolID == schoolID }) {
		repo.db.remove(c.ID)
		res.DeletedCount++
	}
	return res, nil
}
