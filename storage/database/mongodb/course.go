package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/course"
)

type courseDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Syllabus  string             `bson:"syllabus"`
	Duration  string             `bson:"duration"`
	Amount    float64            `bson:"amount"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (doc courseDoc) toCourse() course.Course {
	return course.Course{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		Syllabus:  doc.Syllabus,
		Duration:  doc.Duration,
		Amount:    doc.Amount,
		CreatedAt: doc.CreatedAt.UTC(),
	}
}

type courseRepository struct {
	base
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *mongo.Database, timeout time.Duration) course.Repository {
	return &courseRepository{base{coll: db.Collection(coursesCollection), timeout: timeout}}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	doc := courseDoc{
		ID:        primitive.NewObjectID(),
		Name:      c.Name,
		Syllabus:  c.Syllabus,
		Duration:  c.Duration,
		Amount:    c.Amount,
		CreatedAt: c.CreatedAt,
	}
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		if _, dup := duplicateIndex(err, courseNameIndex); dup {
			return course.Course{}, course.ErrNameExists
		}
		return course.Course{}, core.NewPersistenceError(err, "inserting course")
	}
	return doc.toCourse(), nil
}

func (repo *courseRepository) UpsertCourse(ctx context.Context, c course.Course) (course.Course, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "syllabus", Value: c.Syllabus},
			{Key: "duration", Value: c.Duration},
			{Key: "amount", Value: c.Amount},
		}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: c.CreatedAt}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc courseDoc
	err := repo.coll.FindOneAndUpdate(ctx, bson.D{{Key: "name", Value: c.Name}}, update, opts).Decode(&doc)
	if err != nil {
		return course.Course{}, core.NewPersistenceError(err, "upserting course")
	}
	return doc.toCourse(), nil
}

func (repo *courseRepository) find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]course.Course, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	cur, err := repo.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, core.NewPersistenceError(err, "querying courses")
	}
	var docs []courseDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, core.NewPersistenceError(err, "decoding courses")
	}

	courses := make([]course.Course, 0, len(docs))
	for _, doc := range docs {
		courses = append(courses, doc.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) findOne(ctx context.Context, filter bson.D) (course.Course, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var doc courseDoc
	if err := repo.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, core.NewPersistenceError(err, "finding course")
	}
	return doc.toCourse(), nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	return repo.find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return course.Course{}, course.ErrNotFound
	}
	return repo.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (repo *courseRepository) GetCourseByName(ctx context.Context, name string) (course.Course, error) {
	return repo.findOne(ctx, bson.D{{Key: "name", Value: name}})
}

func (repo *courseRepository) GetCoursesByIDs(ctx context.Context, ids ...string) ([]course.Course, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []course.Course{}, nil
	}
	return repo.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
}
