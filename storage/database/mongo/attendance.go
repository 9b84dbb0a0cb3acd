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
	"github.com/trezcool/masomo-records/core/attendance"
)

type attendanceDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Student  primitive.ObjectID `bson:"student"`
	SClass   primitive.ObjectID `bson:"sclass"`
	Date     time.Time          `bson:"date"`
	Status   string             `bson:"status"`
	MarkedBy primitive.ObjectID `bson:"markedBy"`
}

func (d attendanceDoc) unbson() attendance.Attendance {
	return attendance.Attendance{
		ID:        hex(d.ID),
		StudentID: hex(d.Student),
		ClassID:   hex(d.SClass),
		Date:      d.Date.UTC(),
		Status:    attendance.Status(d.Status),
		MarkedBy:  hex(d.MarkedBy),
	}
}

func unbsonAttendance(docs []attendanceDoc) []attendance.Attendance {
	rows := make([]attendance.Attendance, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, doc.unbson())
	}
	return rows
}

type attendanceRepository struct {
	coll *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) attendance.Repository {
	return &attendanceRepository{coll: db.Collection(attendances)}
}

func (repo *attendanceRepository) UpsertAttendance(ctx context.Context, rows ...attendance.Attendance) (core.UpdateResult, error) {
	if len(rows) == 0 {
		return core.UpdateResult{}, nil
	}

	models := make([]mongo.WriteModel, 0, len(rows))
	for _, row := range rows {
		student, err := ref("student", row.StudentID)
		if err != nil {
			return core.UpdateResult{}, err
		}
		class, err := ref("sclass", row.ClassID)
		if err != nil {
			return core.UpdateResult{}, err
		}
		marker, err := ref("markedBy", row.MarkedBy)
		if err != nil {
			return core.UpdateResult{}, err
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"student": student, "sclass": class, "date": row.Date}).
			SetUpdate(bson.M{"$set": bson.M{"status": string(row.Status), "markedBy": marker}}).
			SetUpsert(true),
		)
	}

	res, err := repo.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if res == nil {
		return core.UpdateResult{}, errors.Wrap(err, "writing attendance")
	}
	summary := core.UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if err != nil {
		return summary, errors.Wrap(err, "writing attendance")
	}
	return summary, nil
}

func (repo *attendanceRepository) QueryClassAttendance(ctx context.Context, classID string, date *time.Time) ([]attendance.Attendance, error) {
	oid, ok := toOID(classID)
	if !ok {
		return []attendance.Attendance{}, nil
	}
	filter := bson.M{"sclass": oid}
	if date != nil {
		filter["date"] = *date
	}

	docs, err := findAll[attendanceDoc](ctx, repo.coll, filter, insertionOrder)
	if err != nil {
		return nil, errors.Wrap(err, "finding class attendance")
	}
	return unbsonAttendance(docs), nil
}

func (repo *attendanceRepository) QueryStudentAttendance(ctx context.Context, studentID string) ([]attendance.Attendance, error) {
	oid, ok := toOID(studentID)
	if !ok {
		return []attendance.Attendance{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}})

	docs, err := findAll[attendanceDoc](ctx, repo.coll, bson.M{"student": oid}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding student attendance")
	}
	return unbsonAttendance(docs), nil
}
