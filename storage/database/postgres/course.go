package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/course"
)

const courseColumns = `id, name, syllabus, duration, amount, created_at`

type courseRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Syllabus  string    `db:"syllabus"`
	Duration  string    `db:"duration"`
	Amount    float64   `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
}

func (row courseRow) toCourse() course.Course {
	return course.Course{
		ID:        row.ID,
		Name:      row.Name,
		Syllabus:  row.Syllabus,
		Duration:  row.Duration,
		Amount:    row.Amount,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

type courseRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB, timeout time.Duration) course.Repository {
	return &courseRepository{db: db, timeout: timeout}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	ctx, cancel := withTimeout(ctx, repo.timeout)
	defer cancel()

	row := courseRow{
		ID:        uuid.NewString(),
		Name:      c.Name,
		Syllabus:  c.Syllabus,
		Duration:  c.Duration,
		Amount:    c.Amount,
		CreatedAt: c.CreatedAt,
	}
	q := `INSERT INTO courses (` + courseColumns + `) VALUES (:id, :name, :syllabus, :duration, :amount, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if constraint, dup := uniqueConstraint(err); dup && constraint == courseNameConstraint {
			return course.Course{}, course.ErrNameExists
		}
		return course.Course{}, core.NewPersistenceError(err, "inserting course")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) UpsertCourse(ctx context.Context, c course.Course) (course.Course, error) {
	ctx, cancel := withTimeout(ctx, repo.timeout)
	defer cancel()

	var row courseRow
	q := `INSERT INTO courses (` + courseColumns + `) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT ` + courseNameConstraint + ` DO UPDATE
		SET syllabus = EXCLUDED.syllabus, duration = EXCLUDED.duration, amount = EXCLUDED.amount
		RETURNING ` + courseColumns
	err := repo.db.GetContext(ctx, &row, q, uuid.NewString(), c.Name, c.Syllabus, c.Duration, c.Amount, c.CreatedAt)
	if err != nil {
		return course.Course{}, core.NewPersistenceError(err, "upserting course")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) selectCourses(ctx context.Context, q string, args ...interface{}) ([]course.Course, error) {
	ctx, cancel := withTimeout(ctx, repo.timeout)
	defer cancel()

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, core.NewPersistenceError(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) getBy(ctx context.Context, column, value string) (course.Course, error) {
	ctx, cancel := withTimeout(ctx, repo.timeout)
	defer cancel()

	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+courseColumns+` FROM courses WHERE `+column+` = $1`, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, core.NewPersistenceError(err, "finding course")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	return repo.selectCourses(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY name`)
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Course{}, course.ErrNotFound
	}
	return repo.getBy(ctx, "id", id)
}

func (repo *courseRepository) GetCourseByName(ctx context.Context, name string) (course.Course, error) {
	return repo.getBy(ctx, "name", name)
}

func (repo *courseRepository) GetCoursesByIDs(ctx context.Context, ids ...string) ([]course.Course, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []course.Course{}, nil
	}
	return repo.selectCourses(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ANY($1::uuid[])`, pq.Array(valid))
}
