package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/complaint"
)

type complainDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	User      primitive.ObjectID `bson:"user"`
	Date      time.Time          `bson:"date"`
	Complaint string             `bson:"complaint"`
	School    primitive.ObjectID `bson:"school"`
	Status    string             `bson:"status"`
}

func (d complainDoc) unbson() complaint.Complaint {
	return complaint.Complaint{
		ID:       hex(d.ID),
		UserID:   hex(d.User),
		Date:     d.Date.UTC(),
		Text:     d.Complaint,
		SchoolID: hex(d.School),
		Status:   complaint.Status(d.Status),
	}
}

type complaintRepository struct {
	coll *mongo.Collection
}

func NewComplaintRepository(db *mongo.Database) complaint.Repository {
	return &complaintRepository{coll: db.Collection(complaints)}
}

func (repo *complaintRepository) CreateComplaint(ctx context.Context, c complaint.Complaint) (complaint.Complaint, error) {
	doc := complainDoc{
		ID:        primitive.NewObjectID(),
		Date:      c.Date,
		Complaint: c.Text,
		Status:    string(c.Status),
	}
	var err error
	if doc.User, err = ref("user", c.UserID); err != nil {
		return complaint.Complaint{}, err
	}
	if doc.School, err = ref("school", c.SchoolID); err != nil {
		return complaint.Complaint{}, err
	}

	if _, err = repo.coll.InsertOne(ctx, doc); err != nil {
		return complaint.Complaint{}, errors.Wrap(err, "inserting complaint")
	}
	return doc.unbson(), nil
}

func (repo *complaintRepository) QueryComplaintsBySchool(ctx context.Context, schoolID string) ([]complaint.Complaint, error) {
	oid, ok := toOID(schoolID)
	if !ok {
		return []complaint.Complaint{}, nil
	}
	docs, err := findAll[complainDoc](ctx, repo.coll, bson.M{"school": oid}, insertionOrder)
	if err != nil {
		return nil, errors.Wrap(err, "finding complaints")
	}

	complaints := make([]complaint.Complaint, 0, len(docs))
	for _, doc := range docs {
		complaints = append(complaints, doc.unbson())
	}
	return complaints, nil
}

func (repo *complaintRepository) UpdateComplaintStatus(ctx context.Context, id string, status complaint.Status) (complaint.Complaint, error) {
	oid, ok := toOID(id)
	if !ok {
		return complaint.Complaint{}, complaint.ErrNotFound
	}

	var doc complainDoc
	err := repo.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return complaint.Complaint{}, complaint.ErrNotFound
		}
		return complaint.Complaint{}, errors.Wrap(err, "updating complaint")
	}
	return doc.unbson(), nil
}

func (repo *complaintRepository) UpdateComplaintsStatus(ctx context.Context, ids []string, status complaint.Status) (core.UpdateResult, error) {
	res, err := repo.coll.UpdateMany(ctx, byIDs(ids), bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return core.UpdateResult{}, errors.Wrap(err, "updating complaints")
	}
	return core.UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}, nil
}

func (repo *complaintRepository) DeleteComplaint(ctx context.Context, id string) (complaint.Complaint, error) {
	oid, ok := toOID(id)
	if !ok {
		return complaint.Complaint{}, complaint.ErrNotFound
	}

	var doc complainDoc
	if err := repo.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return complaint.Complaint{}, complaint.ErrNotFound
		}
		return complaint.Complaint{}, errors.Wrap(err, "deleting complaint")
	}
	return doc.unbson(), nil
}

func (repo *complaintRepository) DeleteComplaintsBySchool(ctx context.Context, schoolID string) (core.DeleteResult, error) {
	oid, ok := toOID(schoolID)
	if !ok {
		return core.DeleteResult{}, nil
	}
	res, err := repo.coll.DeleteMany(ctx, bson.M{"school": oid})
	if err != nil {
		return core.DeleteResult{}, errors.Wrap(err, "deleting complaints")
	}
	return core.DeleteResult{DeletedCount: res.DeletedCount}, nil
}
