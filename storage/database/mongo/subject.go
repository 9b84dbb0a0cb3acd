package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/masomo-records/core/subject"
)

type subjectDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	SubName  string             `bson:"subName"`
	SubCode  string             `bson:"subCode"`
	Sessions string             `bson:"sessions"`
	SClass   primitive.ObjectID `bson:"sclassName"`
	School   primitive.ObjectID `bson:"school"`
	Teacher  primitive.ObjectID `bson:"teacher,omitempty"` // absent until assigned
}

func (d subjectDoc) unbson() subject.Subject {
	return subject.Subject{
		ID:        hex(d.ID),
		Name:      d.SubName,
		Code:      d.SubCode,
		Sessions:  d.Sessions,
		ClassID:   hex(d.SClass),
		SchoolID:  hex(d.School),
		TeacherID: hex(d.Teacher),
	}
}

func boilSubject(sub subject.Subject) (subjectDoc, error) {
	doc := subjectDoc{SubName: sub.Name, SubCode: sub.Code, Sessions: sub.Sessions}
	var err error
	if doc.ID, err = ref("_id", sub.ID, true); err != nil {
		return doc, err
	}
	if doc.SClass, err = ref("sclassName", sub.ClassID); err != nil {
		return doc, err
	}
	if doc.School, err = ref("school", sub.SchoolID); err != nil {
		return doc, err
	}
	if doc.Teacher, err = optRef("teacher", sub.TeacherID); err != nil {
		return doc, err
	}
	return doc, nil
}

// subjectFilter returns false when the filter cannot match anything.
func subjectFilter(f subject.Filter) (bson.M, bool) {
	filter := bson.M{}
	if f.SchoolID != "" {
		oid, ok := toOID(f.SchoolID)
		if !ok {
			return nil, false
		}
		filter["school"] = oid
	}
	if f.ClassID != "" {
		oid, ok := toOID(f.ClassID)
		if !ok {
			return nil, false
		}
		filter["sclassName"] = oid
	}
	if f.Unassigned {
		filter["teacher"] = bson.M{"$exists": false}
	}
	return filter, true
}

type subjectRepository struct {
	coll *mongo.Collection
}

func NewSubjectRepository(db *mongo.Database) subject.Repository {
	return &subjectRepository{coll: db.Collection(subjects)}
}

func (repo *subjectRepository) CreateSubjects(ctx context.Context, subjects ...subject.Subject) ([]subject.Subject, error) {
	if len(subjects) == 0 {
		return []subject.Subject{}, nil
	}

	docs := make([]interface{}, 0, len(subjects))
	created := make([]subject.Subject, 0, len(subjects))
	for _, sub := range subjects {
		doc, err := boilSubject(sub)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
		created = append(created, doc.unbson())
	}

	if _, err := repo.coll.InsertMany(ctx, docs); err != nil {
		return nil, errors.Wrap(err, "inserting subjects")
	}
	return created, nil
}

func (repo *subjectRepository) SubjectCodeExists(ctx context.Context, schoolID, code string) (bool, error) {
	oid, ok := toOID(schoolID)
	if !ok {
		return false, nil
	}
	err := repo.coll.FindOne(ctx, bson.M{"school": oid, "subCode": code}).Err()
	switch {
	case err == nil:
		return true, nil
	case err == mongo.ErrNoDocuments:
		return false, nil
	default:
		return false, errors.Wrap(err, "checking subject code")
	}
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, f subject.Filter) ([]subject.Subject, error) {
	filter, ok := subjectFilter(f)
	if !ok {
		return []subject.Subject{}, nil
	}
	docs, err := findAll[subjectDoc](ctx, repo.coll, filter, insertionOrder)
	if err != nil {
		return nil, errors.Wrap(err, "finding subjects")
	}

	subs := make([]subject.Subject, 0, len(docs))
	for _, doc := range docs {
		subs = append(subs, doc.unbson())
	}
	return subs, nil
}

func (repo *subjectRepository) GetSubject(ctx context.Context, id string) (subject.Subject, error) {
	oid, ok := toOID(id)
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	var doc subjectDoc
	if err := repo.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, errors.Wrap(err, "finding subject")
	}
	return doc.unbson(), nil
}

func (repo *subjectRepository) DeleteSubject(ctx context.Context, id string) (subject.Subject, error) {
	oid, ok := toOID(id)
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	var doc subjectDoc
	if err := repo.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, errors.Wrap(err, "deleting subject")
	}
	return doc.unbson(), nil
}

// DeleteSubjects deletes by the ids found, so subjects created meanwhile are left alone.
func (repo *subjectRepository) DeleteSubjects(ctx context.Context, f subject.Filter) ([]subject.Subject, error) {
	deleted, err := repo.QuerySubjects(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return deleted, nil
	}

	ids := make([]string, 0, len(deleted))
	for _, sub := range deleted {
		ids = append(ids, sub.ID)
	}
	if _, err = repo.coll.DeleteMany(ctx, byIDs(ids)); err != nil {
		return nil, errors.Wrap(err, "deleting subjects")
	}
	return deleted, nil
}
