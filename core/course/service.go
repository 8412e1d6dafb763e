package course

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/boopathidas/upskillglobal/core"
)

var (
	// errors
	ErrNotFound   = errors.New("course not found")
	ErrNameExists = errors.New("a course with this name already exists")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		// UpsertCourse creates the course or updates the existing one with the same name.
		UpsertCourse(ctx context.Context, c Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		GetCourseByName(ctx context.Context, name string) (Course, error)
		GetCoursesByIDs(ctx context.Context, ids ...string) ([]Course, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	c, err := svc.repo.CreateCourse(ctx, Course{
		Name:      nc.Name,
		Syllabus:  nc.Syllabus,
		Duration:  nc.Duration,
		Amount:    *nc.Amount,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrNameExists) {
			return Course{}, core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return Course{}, err
	}
	return c, nil
}

// QueryAll returns all courses ordered by name.
func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	courses, err := svc.repo.QueryAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

// GetByName resolves a course by its exact (trimmed) name.
func (svc *Service) GetByName(ctx context.Context, name string) (Course, error) {
	return svc.repo.GetCourseByName(ctx, core.CleanString(name))
}

// NamesByID returns the names of the courses with the given ids.
// Unknown ids are absent from the result.
func (svc *Service) NamesByID(ctx context.Context, ids ...string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	courses, err := svc.repo.GetCoursesByIDs(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for _, c := range courses {
		names[c.ID] = c.Name
	}
	return names, nil
}

// Seed upserts the Defaults courses.
func (svc *Service) Seed(ctx context.Context) ([]Course, error) {
	seeded := make([]Course, 0, len(Defaults))
	for _, d := range Defaults {
		d.CreatedAt = time.Now().UTC()
		c, err := svc.repo.UpsertCourse(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("seeding %q: %w", d.Name, err)
		}
		seeded = append(seeded, c)
	}
	return seeded, nil
}

// NotFoundError builds the validation error returned when a course name cannot be resolved.
// Available names are listed most similar first.
func NotFoundError(field, name string, available []Course) error {
	names := SuggestNames(name, available)
	msg := fmt.Sprintf("Course %q not found. Available courses: %s", name, strings.Join(names, ", "))
	return core.NewValidationError(ErrNotFound, core.FieldError{Field: field, Error: msg})
}

// SuggestNames orders course names by their similarity with name.
func SuggestNames(name string, courses []Course) []string {
	type scored struct {
		name  string
		ratio float64
	}
	target := strings.Split(strings.ToLower(name), "")
	scores := make([]scored, 0, len(courses))
	for _, c := range courses {
		m := difflib.NewMatcher(target, strings.Split(strings.ToLower(c.Name), ""))
		scores = append(scores, scored{name: c.Name, ratio: m.Ratio()})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].ratio == scores[j].ratio {
			return scores[i].name < scores[j].name
		}
		return scores[i].ratio > scores[j].ratio
	})
	names := make([]string, 0, len(scores))
	for _, s := range scores {
		names = append(names, s.name)
	}
	return names
}
