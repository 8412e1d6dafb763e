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
	"github.com/boopathidas/upskillglobal/core/student"
)

type (
	addressDoc struct {
		Street     string `bson:"street"`
		City       string `bson:"city"`
		State      string `bson:"state"`
		Country    string `bson:"country"`
		PostalCode string `bson:"postalCode"`
	}

	emergencyContactDoc struct {
		Name  string `bson:"name"`
		Phone string `bson:"phone"`
	}

	studentDoc struct {
		ID               primitive.ObjectID  `bson:"_id,omitempty"`
		FullName         string              `bson:"fullName"`
		Username         string              `bson:"username"`
		Password         []byte              `bson:"password"`
		Email            string              `bson:"email"`
		MobileNumber     string              `bson:"mobileNumber"`
		Course           *primitive.ObjectID `bson:"course"`
		Qualification    string              `bson:"qualification"`
		Gender           string              `bson:"gender"`
		Address          addressDoc          `bson:"address"`
		DateOfBirth      *time.Time          `bson:"dateOfBirth"`
		EmergencyContact emergencyContactDoc `bson:"emergencyContact"`
		PaymentStatus    string              `bson:"paymentStatus"`
		EnrollmentDate   time.Time           `bson:"enrollmentDate"`
		CreatedAt        time.Time           `bson:"createdAt"`
		UpdatedAt        time.Time           `bson:"updatedAt"`
	}
)

func newStudentDoc(s student.Student) (studentDoc, error) {
	doc := studentDoc{
		FullName:      s.FullName,
		Username:      s.Username,
		Password:      s.PasswordHash,
		Email:         s.Email,
		MobileNumber:  s.MobileNumber,
		Qualification: s.Qualification,
		Gender:        s.Gender,
		Address: addressDoc{
			Street:     s.Address.Street,
			City:       s.Address.City,
			State:      s.Address.State,
			Country:    s.Address.Country,
			PostalCode: s.Address.PostalCode,
		},
		DateOfBirth:      s.DateOfBirth,
		EmergencyContact: emergencyContactDoc{Name: s.EmergencyContact.Name, Phone: s.EmergencyContact.Phone},
		PaymentStatus:    s.PaymentStatus,
		EnrollmentDate:   s.EnrollmentDate,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if s.CourseID != nil {
		oid, err := primitive.ObjectIDFromHex(*s.CourseID)
		if err != nil {
			return studentDoc{}, errors.Wrapf(err, "invalid course id %q", *s.CourseID)
		}
		doc.Course = &oid
	}
	return doc, nil
}

func (doc studentDoc) toStudent() student.Student {
	s := student.Student{
		ID:            doc.ID.Hex(),
		FullName:      doc.FullName,
		Username:      doc.Username,
		PasswordHash:  doc.Password,
		Email:         doc.Email,
		MobileNumber:  doc.MobileNumber,
		Qualification: doc.Qualification,
		Gender:        doc.Gender,
		Address: student.Address{
			Street:     doc.Address.Street,
			City:       doc.Address.City,
			State:      doc.Address.State,
			Country:    doc.Address.Country,
			PostalCode: doc.Address.PostalCode,
		},
		DateOfBirth:      doc.DateOfBirth,
		EmergencyContact: student.EmergencyContact{Name: doc.EmergencyContact.Name, Phone: doc.EmergencyContact.Phone},
		PaymentStatus:    doc.PaymentStatus,
		EnrollmentDate:   doc.EnrollmentDate.UTC(),
		CreatedAt:        doc.CreatedAt.UTC(),
		UpdatedAt:        doc.UpdatedAt.UTC(),
	}
	if doc.Course != nil {
		id := doc.Course.Hex()
		s.CourseID = &id
	}
	return s
}

type studentRepository struct {
	base
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *mongo.Database, timeout time.Duration) student.Repository {
	return &studentRepository{base{coll: db.Collection(studentsCollection), timeout: timeout}}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stud student.Student) (student.Student, error) {
	doc, err := newStudentDoc(stud)
	if err != nil {
		return student.Student{}, err
	}
	doc.ID = primitive.NewObjectID()

	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	if _, err = repo.coll.InsertOne(ctx, doc); err != nil {
		if idx, dup := duplicateIndex(err, usernameIndex, emailIndex); dup {
			if idx == emailIndex {
				return student.Student{}, core.NewConflictError("email", student.ErrEmailExists)
			}
			return student.Student{}, core.NewConflictError("username", student.ErrUsernameExists)
		}
		return student.Student{}, core.NewPersistenceError(err, "inserting student")
	}
	return doc.toStudent(), nil
}

func (repo *studentRepository) findOne(ctx context.Context, filter bson.D) (student.Student, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var doc studentDoc
	if err := repo.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, core.NewPersistenceError(err, "finding student")
	}
	return doc.toStudent(), nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return student.Student{}, student.ErrNotFound
	}
	return repo.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (repo *studentRepository) GetStudentByUsername(ctx context.Context, username string) (student.Student, error) {
	return repo.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (repo *studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	return repo.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (repo *studentRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	n, err := repo.coll.CountDocuments(ctx, bson.D{{Key: "username", Value: username}}, options.Count().SetLimit(1))
	if err != nil {
		return false, core.NewPersistenceError(err, "counting students")
	}
	return n > 0, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, ordering core.Ordering) ([]student.Student, error) {
	if ordering.Field != student.OrderByCreatedAt {
		return nil, errors.Errorf("unsupported ordering field %q", ordering.Field)
	}

	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: ordering.Direction()}})
	cur, err := repo.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, core.NewPersistenceError(err, "querying students")
	}
	var docs []studentDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, core.NewPersistenceError(err, "decoding students")
	}

	studs := make([]student.Student, 0, len(docs))
	for _, doc := range docs {
		studs = append(studs, doc.toStudent())
	}
	return studs, nil
}

func (repo *studentRepository) UpdateStudentPassword(ctx context.Context, id string, hash []byte) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return student.ErrNotFound
	}

	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	res, err := repo.coll.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: hash},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
	if err != nil {
		return core.NewPersistenceError(err, "updating student password")
	}
	if res.MatchedCount == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *studentRepository) CountByCourse(ctx context.Context) (map[string]int, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$course"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := repo.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, core.NewPersistenceError(err, "counting students by course")
	}
	var rows []struct {
		Course *primitive.ObjectID `bson:"_id"`
		Count  int                 `bson:"count"`
	}
	if err = cur.All(ctx, &rows); err != nil {
		return nil, core.NewPersistenceError(err, "decoding course counts")
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		var id string
		if row.Course != nil {
			id = row.Course.Hex()
		}
		counts[id] += row.Count
	}
	return counts, nil
}
