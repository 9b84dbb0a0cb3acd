package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/masomo-records/core"
)

// collection names
const (
	classes     = "sclasses"
	teachers    = "teachers"
	students    = "students"
	subjects    = "subjects"
	attendances = "attendances"
	complaints  = "complains"
)

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		attendances: {
			{
				Keys:    bson.D{{Key: "student", Value: 1}, {Key: "sclass", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("student_sclass_date"),
			},
			{Keys: bson.D{{Key: "sclass", Value: 1}, {Key: "date", Value: 1}}},
		},
		subjects: {
			{Keys: bson.D{{Key: "school", Value: 1}, {Key: "subCode", Value: 1}}},
			{Keys: bson.D{{Key: "sclassName", Value: 1}}},
		},
		students: {
			{Keys: bson.D{{Key: "sclassName", Value: 1}}},
		},
		teachers: {
			{Keys: bson.D{{Key: "teachSubject", Value: 1}}},
		},
		complaints: {
			{Keys: bson.D{{Key: "school", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

// Ids are ObjectIDs in the store and hex strings everywhere else.

func toOID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// toOIDs drops the ids that are not valid ObjectIDs; they cannot match anything.
func toOIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := toOID(id); ok {
			oids = append(oids, oid)
		}
	}
	return oids
}

// ref converts a reference about to be written; a new ObjectID is generated when id is blank and generate is set.
func ref(field, id string, generate ...bool) (primitive.ObjectID, error) {
	if id == "" && len(generate) > 0 && generate[0] {
		return primitive.NewObjectID(), nil
	}
	oid, ok := toOID(id)
	if !ok {
		return primitive.NilObjectID, core.NewValidationError(nil, core.FieldError{Field: field, Error: "invalid id"})
	}
	return oid, nil
}

// optRef is ref for references that may be left unset.
func optRef(field, id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NilObjectID, nil
	}
	return ref(field, id)
}

func refs(field string, ids []string) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := ref(field, id)
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	return oids, nil
}

func hex(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

func hexes(oids []primitive.ObjectID) []string {
	if oids == nil {
		return nil
	}
	ids := make([]string, 0, len(oids))
	for _, oid := range oids {
		ids = append(ids, hex(oid))
	}
	return ids
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	docs := make([]T, 0)
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

var insertionOrder = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
