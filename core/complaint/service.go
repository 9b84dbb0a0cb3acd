package complaint

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/school"
)

var (
	ErrNotFound = errors.New("complaint not found")

	errComplaintNotFound = "Complain not found"
)

type (
	Repository interface {
		CreateComplaint(ctx context.Context, c Complaint) (Complaint, error)
		QueryComplaintsBySchool(ctx context.Context, schoolID string) ([]Complaint, error)
		// UpdateComplaintStatus returns the updated complaint, or ErrNotFound.
		UpdateComplaintStatus(ctx context.Context, id string, status Status) (Complaint, error)
		UpdateComplaintsStatus(ctx context.Context, ids []string, status Status) (core.UpdateResult, error)
		// DeleteComplaint returns the deleted complaint, or ErrNotFound.
		DeleteComplaint(ctx context.Context, id string) (Complaint, error)
		DeleteComplaintsBySchool(ctx context.Context, schoolID string) (core.DeleteResult, error)
	}

	Service interface {
		Create(ctx context.Context, nc NewComplaint) (Complaint, error)
		QueryBySchool(ctx context.Context, schoolID string) ([]Detail, error)
		UpdateStatus(ctx context.Context, id string, status Status) (Detail, error)
		UpdateManyStatus(ctx context.Context, ids []string, status Status) (core.UpdateResult, error)
		Delete(ctx context.Context, id string) (Complaint, error)
		DeleteBySchool(ctx context.Context, schoolID string) (core.DeleteResult, error)
	}

	service struct {
		repo       Repository
		schoolRepo school.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, schoolRepo school.Repository) Service {
	return &service{repo: repo, schoolRepo: schoolRepo}
}

func (svc *service) Create(ctx context.Context, nc NewComplaint) (Complaint, error) {
	date, err := core.ParseDate(nc.Date)
	if err != nil {
		return Complaint{}, core.NewValidationError(nil, core.FieldError{Field: "date", Error: err.Error()})
	}
	c, err := svc.repo.CreateComplaint(ctx, Complaint{
		UserID:   core.CleanString(nc.UserID),
		Date:     date,
		Text:     core.CleanString(nc.Text),
		SchoolID: core.CleanString(nc.SchoolID),
		Status:   StatusPending,
	})
	if err != nil {
		return Complaint{}, errors.Wrap(err, "creating complaint")
	}
	return c, nil
}

func (svc *service) QueryBySchool(ctx context.Context, schoolID string) ([]Detail, error) {
	complaints, err := svc.repo.QueryComplaintsBySchool(ctx, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying complaints")
	}
	return svc.details(ctx, complaints...)
}

func (svc *service) UpdateStatus(ctx context.Context, id string, status Status) (Detail, error) {
	c, err := svc.repo.UpdateComplaintStatus(ctx, id, status)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Detail{}, core.NewNotFoundError(errComplaintNotFound)
		}
		return Detail{}, errors.Wrap(err, "updating complaint status")
	}
	details, err := svc.details(ctx, c)
	if err != nil {
		return Detail{}, err
	}
	return details[0], nil
}

func (svc *service) UpdateManyStatus(ctx context.Context, ids []string, status Status) (core.UpdateResult, error) {
	res, err := svc.repo.UpdateComplaintsStatus(ctx, core.CleanStrings(ids), status)
	if err != nil {
		return res, errors.Wrap(err, "updating complaints status")
	}
	return res, nil
}

func (svc *service) Delete(ctx context.Context, id string) (Complaint, error) {
	c, err := svc.repo.DeleteComplaint(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Complaint{}, core.NewNotFoundError(errComplaintNotFound)
		}
		return Complaint{}, errors.Wrap(err, "deleting complaint")
	}
	return c, nil
}

func (svc *service) DeleteBySchool(ctx context.Context, schoolID string) (core.DeleteResult, error) {
	res, err := svc.repo.DeleteComplaintsBySchool(ctx, schoolID)
	if err != nil {
		return res, errors.Wrap(err, "deleting school complaints")
	}
	return res, nil
}

// details resolves the complaint authors.
func (svc *service) details(ctx context.Context, complaints ...Complaint) ([]Detail, error) {
	userIDs := make(core.StringSet, len(complaints))
	for _, c := range complaints {
		userIDs[c.UserID] = struct{}{}
	}
	dir, err := school.LoadDirectory(ctx, svc.schoolRepo, userIDs.Values(), nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "resolving complaint authors")
	}

	details := make([]Detail, 0, len(complaints))
	for _, c := range complaints {
		d := Detail{
			ID:       c.ID,
			User:     dir.Student(c.UserID),
			Date:     c.Date,
			Text:     c.Text,
			SchoolID: c.SchoolID,
			Status:   c.Status,
		}
		if d.User != nil {
			d.User.RollNum = 0 // only name & email are shown
		}
		details = append(details, d)
	}
	return details, nil
}
