package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	studs := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		studs = append(studs, *s)
	}
	return studs
}

func (repo *studentRepository) find(match func(s *student.Student) bool) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.table {
		if match(s) {
			return *s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stud student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, s := range repo.db.table {
		if s.Username == stud.Username {
			return student.Student{}, core.NewConflictError("username", student.ErrUsernameExists)
		}
		if s.Email == stud.Email {
			return student.Student{}, core.NewConflictError("email", student.ErrEmailExists)
		}
	}

	stud.ID = uuid.NewString()
	repo.db.table[stud.ID] = &stud
	return stud, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByUsername(ctx context.Context, username string) (student.Student, error) {
	return repo.find(func(s *student.Student) bool { return s.Username == username })
}

func (repo *studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	return repo.find(func(s *student.Student) bool { return s.Email == email })
}

func (repo *studentRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := repo.GetStudentByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, student.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (repo *studentRepository) QueryStudents(ctx context.Context, ordering core.Ordering) ([]student.Student, error) {
	if ordering.Field != student.OrderByCreatedAt {
		return nil, errors.Errorf("unsupported ordering field %q", ordering.Field)
	}

	repo.db.mutex.RLock()
	studs := repo.query()
	repo.db.mutex.RUnlock()

	sort.SliceStable(studs, func(i, j int) bool {
		if ordering.Ascending {
			return studs[i].CreatedAt.Before(studs[j].CreatedAt)
		}
		return studs[i].CreatedAt.After(studs[j].CreatedAt)
	})
	return studs, nil
}

func (repo *studentRepository) UpdateStudentPassword(ctx context.Context, id string, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.table[id]
	if !ok {
		return student.ErrNotFound
	}
	s.PasswordHash = hash
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *studentRepository) CountByCourse(ctx context.Context) (map[string]int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[string]int)
	for _, s := range repo.db.table {
		var id string
		if s.CourseID != nil {
			id = *s.CourseID
		}
		counts[id]++
	}
	return counts, nil
}
