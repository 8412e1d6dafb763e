package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/student"
)

const studentColumns = `id, full_name, username, password_hash, email, mobile_number, course_id, qualification, gender,
	address_street, address_city, address_state, address_country, address_postal_code, date_of_birth,
	emergency_contact_name, emergency_contact_phone, payment_status, enrollment_date, created_at, updated_at`

type studentRow struct {
	ID                    string         `db:"id"`
	FullName              string         `db:"full_name"`
	Username              string         `db:"username"`
	PasswordHash          []byte         `db:"password_hash"`
	Email                 string         `db:"email"`
	MobileNumber          string         `db:"mobile_number"`
	CourseID              sql.NullString `db:"course_id"`
	Qualification         string         `db:"qualification"`
	Gender                string         `db:"gender"`
	AddressStreet         string         `db:"address_street"`
	AddressCity           string         `db:"address_city"`
	AddressState          string         `db:"address_state"`
	AddressCountry        string         `db:"address_country"`
	AddressPostalCode     string         `db:"address_postal_code"`
	DateOfBirth           sql.NullTime   `db:"date_of_birth"`
	EmergencyContactName  string         `db:"emergency_contact_name"`
	EmergencyContactPhone string         `db:"emergency_contact_phone"`
	PaymentStatus         string         `db:"payment_status"`
	EnrollmentDate        time.Time      `db:"enrollment_date"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
}

func newStudentRow(s student.Student) studentRow {
	row := studentRow{
		ID:                    s.ID,
		FullName:              s.FullName,
		Username:              s.Username,
		PasswordHash:          s.PasswordHash,
		Email:                 s.Email,
		MobileNumber:          s.MobileNumber,
		Qualification:         s.Qualification,
		Gender:                s.Gender,
		AddressStreet:         s.Address.Street,
		AddressCity:           s.Address.City,
		AddressState:          s.Address.State,
		AddressCountry:        s.Address.Country,
		AddressPostalCode:     s.Address.PostalCode,
		EmergencyContactName:  s.EmergencyContact.Name,
		EmergencyContactPhone: s.EmergencyContact.Phone,
		PaymentStatus:         s.PaymentStatus,
		EnrollmentDate:        s.EnrollmentDate,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
	if s.CourseID != nil {
		row.CourseID = sql.NullString{String: *s.CourseID, Valid: true}
	}
	if s.DateOfBirth != nil {
		row.DateOfBirth = sql.NullTime{Time: *s.DateOfBirth, Valid: true}
	}
	return row
}

func (row studentRow) toStudent() student.Student {
	s := student.Student{
		ID:            row.ID,
		FullName:      row.FullName,
		Username:      row.Username,
		PasswordHash:  row.PasswordHash,
		Email:         row.Email,
		MobileNumber:  row.MobileNumber,
		Qualification: row.Qualification,
		Gender:        row.Gender,
		Address: student.Address{
			Street:     row.AddressStreet,
			City:       row.AddressCity,
			State:      row.AddressState,
			Country:    row.AddressCountry,
			PostalCode: row.AddressPostalCode,
		},
		EmergencyContact: student.EmergencyContact{Name: row.EmergencyContactName, Phone: row.EmergencyContactPhone},
		PaymentStatus:    row.PaymentStatus,
		EnrollmentDate:   row.EnrollmentDate.UTC(),
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
	if row.CourseID.Valid {
		id := row.CourseID.String
		s.CourseID = &id
	}
	if row.DateOfBirth.Valid {
		dob := row.DateOfBirth.Time.UTC()
		s.DateOfBirth = &dob
	}
	return s
}

type studentRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB, timeout time.Duration) student.Repository {
	return &studentRepository{db: db, timeout: timeout}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stud student.Student) (student.Student, error) {
	ctx, cancel := withTimeout(ctx, repo.timeout)
	defer cancel()

	stud.ID = uuid.NewString()
	q := `INSERT INTO students (` + studentColumns + `) VALUES (
		:id, :full_name, :username, :password_hash, :email, :mobile_number, :course_id, :qualification, :gender,
		:address_street, :address_city, :address_state, :address_country, :address_postal_code, :date_of_birth,
		:emergency_contact_name, :emergency_contact_phone, :payment_status, :enrollment_date, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newStudentRow(stud)); err != nil {
		if constraint, dup := uniqueConstraint(err); dup {
			if constraint == emailConstraint {
				return student.Student{}, core.NewConflictError("email", student.ErrEmailExists)
			}
			return student.Student{}, core.NewConflictError("username", student.ErrUsernameExists)
		}
		return student.Student{}, core.NewPersistenceError(err, "inserting student")
	}
	return stud, nil
}

func (repo *studentRepository) getBy(ctx context.Context, column, value string) (student.Student, error) {
	ctx, cancel := withTimeout(ctx, repo.timeout)
	defer cancel()

	var row studentRow
	q := `SELECT ` + studentColumns + ` FROM students WHERE ` + column + ` = $1`
	if err := repo.db.GetContext(ctx, &row, q, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, core.NewPersistenceError(err, "finding student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}
	return repo.getBy(ctx, "id", id)
}

func (repo *studentRepository) GetStudentByUsername(ctx context.Context, username string) (student.Student, error) {
	return repo.getBy(ctx, "username", username)
}

func (repo *studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	return repo.getBy(ctx, "email", email)
}

func (repo *studentRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	ctx, cancel := withTimeout(ctx, repo.timeout)
	defer cancel()

	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM students WHERE username = $1)`, username)
	if err != nil {
		return false, core.NewPersistenceError(err, "checking username")
	}
	return exists, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, ordering core.Ordering) ([]student.Student, error) {
	if ordering.Field != student.OrderByCreatedAt {
		return nil, errors.Errorf("unsupported ordering field %q", ordering.Field)
	}

	ctx, cancel := withTimeout(ctx, repo.timeout)
	defer cancel()

	var rows []studentRow
	q := `SELECT ` + studentColumns + ` FROM students ORDER BY ` + ordering.String()
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, core.NewPersistenceError(err, "querying students")
	}

	studs := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		studs = append(studs, row.toStudent())
	}
	return studs, nil
}

func (repo *studentRepository) UpdateStudentPassword(ctx context.Context, id string, hash []byte) error {
	if _, err := uuid.Parse(id); err != nil {
		return student.ErrNotFound
	}

	ctx, cancel := withTimeout(ctx, repo.timeout)
	defer cancel()

	res, err := repo.db.ExecContext(ctx,
		`UPDATE students SET password_hash = $1, updated_at = $2 WHERE id = $3`, hash, time.Now().UTC(), id)
	if err != nil {
		return core.NewPersistenceError(err, "updating student password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *studentRepository) CountByCourse(ctx context.Context) (map[string]int, error) {
	ctx, cancel := withTimeout(ctx, repo.timeout)
	defer cancel()

	var rows []struct {
		CourseID sql.NullString `db:"course_id"`
		Count    int            `db:"count"`
	}
	if err := repo.db.SelectContext(ctx, &rows, `SELECT course_id, COUNT(*) AS count FROM students GROUP BY course_id`); err != nil {
		return nil, core.NewPersistenceError(err, "counting students by course")
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.CourseID.String] += row.Count
	}
	return counts, nil
}
