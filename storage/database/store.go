package database

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/attendance"
	"github.com/trezcool/masomo-records/core/complaint"
	"github.com/trezcool/masomo-records/core/school"
	"github.com/trezcool/masomo-records/core/subject"
	"github.com/trezcool/masomo-records/storage/database/inmem"
	"github.com/trezcool/masomo-records/storage/database/mongo"
)

const (
	EngineMongo = "mongo"
	EngineInMem = "inmem"
)

type (
	// Repositories are the stores behind every service.
	Repositories struct {
		School     school.Repository
		Attendance attendance.Repository
		Complaint  complaint.Repository
		Subject    subject.Repository
	}

	// Store owns the connection its repositories share.
	Store struct {
		Engine string
		Repos  Repositories
		db     *mongo.Database // nil with the in-memory engine
	}
)

// OpenStore opens the configured engine and builds its repositories.
func OpenStore(ctx context.Context, conf *core.Config) (*Store, error) {
	switch conf.Database.Engine {
	case EngineMongo, "":
		db, err := Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		return &Store{
			Engine: EngineMongo,
			db:     db,
			Repos: Repositories{
				School:     mongorepos.NewSchoolRepository(db),
				Attendance: mongorepos.NewAttendanceRepository(db),
				Complaint:  mongorepos.NewComplaintRepository(db),
				Subject:    mongorepos.NewSubjectRepository(db),
			},
		}, nil

	case EngineInMem:
		db := inmemdb.Open()
		return &Store{
			Engine: EngineInMem,
			Repos: Repositories{
				School:     inmemdb.NewSchoolRepository(db),
				Attendance: inmemdb.NewAttendanceRepository(db),
				Complaint:  inmemdb.NewComplaintRepository(db),
				Subject:    inmemdb.NewSubjectRepository(db),
			},
		}, nil
	}
	return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}

// EnsureIndexes is a no-op for the in-memory engine.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return mongorepos.EnsureIndexes(ctx, s.db)
}

func (s *Store) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return Close(ctx, s.db)
}
