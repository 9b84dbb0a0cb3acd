package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/masomo-records/core/school"
)

type (
	classDoc struct {
		ID     primitive.ObjectID `bson:"_id"`
		Name   string             `bson:"sclassName"`
		School primitive.ObjectID `bson:"school,omitempty"`
	}

	teacherDoc struct {
		ID             primitive.ObjectID   `bson:"_id"`
		Name           string               `bson:"name"`
		Email          string               `bson:"email"`
		School         primitive.ObjectID   `bson:"school,omitempty"`
		ClassTeacherOf []primitive.ObjectID `bson:"classTeacherOf"`
		TeachSubject   []primitive.ObjectID `bson:"teachSubject"`
	}

	studentDoc struct {
		ID         primitive.ObjectID     `bson:"_id"`
		Name       string                 `bson:"name"`
		RollNum    int                    `bson:"rollNum"`
		Email      string                 `bson:"email,omitempty"`
		SClass     primitive.ObjectID     `bson:"sclassName"`
		School     primitive.ObjectID     `bson:"school,omitempty"`
		ExamResult []examResultDoc        `bson:"examResult"`
		Attendance []subjectAttendanceDoc `bson:"attendance"`
	}

	examResultDoc struct {
		SubName       primitive.ObjectID `bson:"subName"`
		MarksObtained int                `bson:"marksObtained"`
	}

	subjectAttendanceDoc struct {
		Date    time.Time          `bson:"date"`
		Status  string             `bson:"status"`
		SubName primitive.ObjectID `bson:"subName"`
	}
)

func (d classDoc) unbson() school.Class {
	return school.Class{ID: hex(d.ID), Name: d.Name, SchoolID: hex(d.School)}
}

func (d teacherDoc) unbson() school.Teacher {
	return school.Teacher{
		ID:             hex(d.ID),
		Name:           d.Name,
		Email:          d.Email,
		SchoolID:       hex(d.School),
		ClassTeacherOf: hexes(d.ClassTeacherOf),
		TeachSubjects:  hexes(d.TeachSubject),
	}
}

func (d studentDoc) unbson() school.Student {
	s := school.Student{
		ID:       hex(d.ID),
		Name:     d.Name,
		RollNum:  d.RollNum,
		Email:    d.Email,
		ClassID:  hex(d.SClass),
		SchoolID: hex(d.School),
	}
	if d.ExamResult != nil {
		s.ExamResults = make([]school.ExamResult, 0, len(d.ExamResult))
		for _, r := range d.ExamResult {
			s.ExamResults = append(s.ExamResults, school.ExamResult{SubjectID: hex(r.SubName), MarksObtained: r.MarksObtained})
		}
	}
	if d.Attendance != nil {
		s.Attendance = make([]school.SubjectAttendance, 0, len(d.Attendance))
		for _, a := range d.Attendance {
			s.Attendance = append(s.Attendance, school.SubjectAttendance{Date: a.Date, Status: a.Status, SubjectID: hex(a.SubName)})
		}
	}
	return s
}

type schoolRepository struct {
	classes  *mongo.Collection
	teachers *mongo.Collection
	students *mongo.Collection
}

func NewSchoolRepository(db *mongo.Database) school.Repository {
	return &schoolRepository{
		classes:  db.Collection(classes),
		teachers: db.Collection(teachers),
		students: db.Collection(students),
	}
}

func (repo *schoolRepository) CreateClass(ctx context.Context, class school.Class) (school.Class, error) {
	var (
		doc classDoc
		err error
	)
	if doc.ID, err = ref("_id", class.ID, true); err != nil {
		return school.Class{}, err
	}
	if doc.School, err = optRef("school", class.SchoolID); err != nil {
		return school.Class{}, err
	}
	doc.Name = class.Name

	if _, err = repo.classes.InsertOne(ctx, doc); err != nil {
		return school.Class{}, errors.Wrap(err, "inserting class")
	}
	return doc.unbson(), nil
}

func (repo *schoolRepository) CreateTeacher(ctx context.Context, teacher school.Teacher) (school.Teacher, error) {
	var (
		doc = teacherDoc{Name: teacher.Name, Email: teacher.Email}
		err error
	)
	if doc.ID, err = ref("_id", teacher.ID, true); err != nil {
		return school.Teacher{}, err
	}
	if doc.School, err = optRef("school", teacher.SchoolID); err != nil {
		return school.Teacher{}, err
	}
	if doc.ClassTeacherOf, err = refs("classTeacherOf", teacher.ClassTeacherOf); err != nil {
		return school.Teacher{}, err
	}
	if doc.TeachSubject, err = refs("teachSubject", teacher.TeachSubjects); err != nil {
		return school.Teacher{}, err
	}

	if _, err = repo.teachers.InsertOne(ctx, doc); err != nil {
		return school.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return doc.unbson(), nil
}

func (repo *schoolRepository) CreateStudent(ctx context.Context, student school.Student) (school.Student, error) {
	var (
		doc = studentDoc{Name: student.Name, RollNum: student.RollNum, Email: student.Email}
		err error
	)
	if doc.ID, err = ref("_id", student.ID, true); err != nil {
		return school.Student{}, err
	}
	if doc.SClass, err = ref("sclassName", student.ClassID); err != nil {
		return school.Student{}, err
	}
	if doc.School, err = optRef("school", student.SchoolID); err != nil {
		return school.Student{}, err
	}
	for _, r := range student.ExamResults {
		oid, err := ref("examResult.subName", r.SubjectID)
		if err != nil {
			return school.Student{}, err
		}
		doc.ExamResult = append(doc.ExamResult, examResultDoc{SubName: oid, MarksObtained: r.MarksObtained})
	}
	for _, a := range student.Attendance {
		oid, err := ref("attendance.subName", a.SubjectID)
		if err != nil {
			return school.Student{}, err
		}
		doc.Attendance = append(doc.Attendance, subjectAttendanceDoc{Date: a.Date, Status: a.Status, SubName: oid})
	}

	if _, err = repo.students.InsertOne(ctx, doc); err != nil {
		return school.Student{}, errors.Wrap(err, "inserting student")
	}
	return doc.unbson(), nil
}

// findOne decodes the document with the given id into doc, or returns school.ErrNotFound.
func findOne(ctx context.Context, coll *mongo.Collection, id string, doc interface{}) error {
	oid, ok := toOID(id)
	if !ok {
		return school.ErrNotFound
	}
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return school.ErrNotFound
		}
		return err
	}
	return nil
}

func (repo *schoolRepository) GetClass(ctx context.Context, id string) (school.Class, error) {
	var doc classDoc
	if err := findOne(ctx, repo.classes, id, &doc); err != nil {
		return school.Class{}, err
	}
	return doc.unbson(), nil
}

func (repo *schoolRepository) GetTeacher(ctx context.Context, id string) (school.Teacher, error) {
	var doc teacherDoc
	if err := findOne(ctx, repo.teachers, id, &doc); err != nil {
		return school.Teacher{}, err
	}
	return doc.unbson(), nil
}

func (repo *schoolRepository) GetStudent(ctx context.Context, id string) (school.Student, error) {
	var doc studentDoc
	if err := findOne(ctx, repo.students, id, &doc); err != nil {
		return school.Student{}, err
	}
	return doc.unbson(), nil
}

func (repo *schoolRepository) QueryClassStudentIDs(ctx context.Context, classID string) ([]string, error) {
	oid, ok := toOID(classID)
	if !ok {
		return []string{}, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	docs, err := findAll[struct {
		ID primitive.ObjectID `bson:"_id"`
	}](ctx, repo.students, bson.M{"sclassName": oid}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding class students")
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, hex(doc.ID))
	}
	return ids, nil
}

func byIDs(ids []string) bson.M {
	return bson.M{"_id": bson.M{"$in": toOIDs(ids)}}
}

func (repo *schoolRepository) QueryStudentsByID(ctx context.Context, ids ...string) ([]school.Student, error) {
	docs, err := findAll[studentDoc](ctx, repo.students, byIDs(ids), insertionOrder)
	if err != nil {
		return nil, errors.Wrap(err, "finding students")
	}
	students := make([]school.Student, 0, len(docs))
	for _, doc := range docs {
		students = append(students, doc.unbson())
	}
	return students, nil
}

func (repo *schoolRepository) QueryTeachersByID(ctx context.Context, ids ...string) ([]school.Teacher, error) {
	docs, err := findAll[teacherDoc](ctx, repo.teachers, byIDs(ids), insertionOrder)
	if err != nil {
		return nil, errors.Wrap(err, "finding teachers")
	}
	teachers := make([]school.Teacher, 0, len(docs))
	for _, doc := range docs {
		teachers = append(teachers, doc.unbson())
	}
	return teachers, nil
}

func (repo *schoolRepository) QueryClassesByID(ctx context.Context, ids ...string) ([]school.Class, error) {
	docs, err := findAll[classDoc](ctx, repo.classes, byIDs(ids), insertionOrder)
	if err != nil {
		return nil, errors.Wrap(err, "finding classes")
	}
	classes := make([]school.Class, 0, len(docs))
	for _, doc := range docs {
		classes = append(classes, doc.unbson())
	}
	return classes, nil
}

func (repo *schoolRepository) PullTeacherSubjects(ctx context.Context, subjectIDs ...string) (int64, error) {
	oids := toOIDs(subjectIDs)
	if len(oids) == 0 {
		return 0, nil
	}
	res, err := repo.teachers.UpdateMany(ctx,
		bson.M{"teachSubject": bson.M{"$in": oids}},
		bson.M{"$pull": bson.M{"teachSubject": bson.M{"$in": oids}}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "pulling teacher subjects")
	}
	return res.ModifiedCount, nil
}

// PullStudentSubjectRecords pulls each array on its own: $pull fails on a
// field that is null, and a student may hold exam results without attendance.
func (repo *schoolRepository) PullStudentSubjectRecords(ctx context.Context, subjectID string) (int64, error) {
	oid, ok := toOID(subjectID)
	if !ok {
		return 0, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	docs, err := findAll[struct {
		ID primitive.ObjectID `bson:"_id"`
	}](ctx, repo.students, bson.M{"$or": bson.A{
		bson.M{"examResult.subName": oid},
		bson.M{"attendance.subName": oid},
	}}, opts)
	if err != nil {
		return 0, errors.Wrap(err, "finding students with subject records")
	}
	if len(docs) == 0 {
		return 0, nil
	}
	oids := make([]primitive.ObjectID, 0, len(docs))
	for _, doc := range docs {
		oids = append(oids, doc.ID)
	}

	for _, field := range []string{"examResult", "attendance"} {
		_, err := repo.students.UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": oids}, field + ".subName": oid},
			bson.M{"$pull": bson.M{field: bson.M{"subName": oid}}},
		)
		if err != nil {
			return 0, errors.Wrapf(err, "pulling student %s records", field)
		}
	}
	return int64(len(oids)), nil
}

func (repo *schoolRepository) ResetStudentSubjectRecords(ctx context.Context) (int64, error) {
	res, err := repo.students.UpdateMany(ctx,
		bson.M{},
		bson.M{"$set": bson.M{"examResult": nil, "attendance": nil}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "resetting student subject records")
	}
	return res.ModifiedCount, nil
}
