package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/boopathidas/upskillglobal/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.table {
		if existing.Name == c.Name {
			return course.Course{}, course.ErrNameExists
		}
	}
	c.ID = uuid.NewString()
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) UpsertCourse(ctx context.Context, c course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.table {
		if existing.Name == c.Name {
			existing.Syllabus = c.Syllabus
			existing.Duration = c.Duration
			existing.Amount = c.Amount
			return *existing, nil
		}
	}
	c.ID = uuid.NewString()
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		courses = append(courses, *c)
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCourseByName(ctx context.Context, name string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, c := range repo.db.table {
		if c.Name == name {
			return *c, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCoursesByIDs(ctx context.Context, ids ...string) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := repo.db.table[id]; ok {
			courses = append(courses, *c)
		}
	}
	return courses, nil
}
