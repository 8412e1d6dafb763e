package course_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/course"
	"github.com/boopathidas/upskillglobal/storage/database/inmem"
	"github.com/boopathidas/upskillglobal/tests"
)

func setup(t *testing.T) (*course.Service, course.Repository) {
	t.Helper()
	validate, _ := testutil.NewValidator()
	repo := inmemdb.NewCourseRepository(inmemdb.Open())
	return course.NewService(repo, validate), repo
}

func amount(f float64) *float64 { return &f }

func TestService_Create(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	testutil.CreateCourse(t, repo, "React Fundamentals", 9999)

	tests := []struct {
		name       string
		nc         course.NewCourse
		wantFields []string
		wantDup    bool
	}{
		{name: "valid", nc: course.NewCourse{Name: " Go Basics ", Syllabus: "Goroutines", Duration: "1 month", Amount: amount(4999)}},
		{name: "free course", nc: course.NewCourse{Name: "Intro", Syllabus: "Intro", Duration: "1 week", Amount: amount(0)}},
		{name: "empty", nc: course.NewCourse{}, wantFields: []string{"name", "syllabus", "duration", "amount"}},
		{name: "blank name", nc: course.NewCourse{Name: "  ", Syllabus: "s", Duration: "d", Amount: amount(1)}, wantFields: []string{"name"}},
		{name: "negative amount", nc: course.NewCourse{Name: "Neg", Syllabus: "s", Duration: "d", Amount: amount(-1)}, wantFields: []string{"amount"}},
		{name: "duplicate name", nc: course.NewCourse{Name: "React Fundamentals", Syllabus: "s", Duration: "d", Amount: amount(1)}, wantDup: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := svc.Create(ctx, tt.nc)
			switch {
			case tt.wantFields != nil:
				var vErrs validator.ValidationErrors
				require.True(t, errors.As(err, &vErrs), "got %v", err)
				fields := make([]string, 0, len(vErrs))
				for _, fe := range vErrs {
					fields = append(fields, fe.Field())
				}
				assert.Equal(t, tt.wantFields, fields)
			case tt.wantDup:
				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr), "got %v", err)
				assert.Equal(t, []core.FieldError{{Field: "name", Error: course.ErrNameExists.Error()}}, vErr.Fields)
			default:
				require.NoError(t, err)
				assert.NotEmpty(t, c.ID)
				assert.Equal(t, core.CleanString(tt.nc.Name), c.Name)
				assert.Equal(t, *tt.nc.Amount, c.Amount)
			}
		})
	}
}

func TestService_QueryAll(t *testing.T) {
	svc, repo := setup(t)
	testutil.CreateCourse(t, repo, "React Fundamentals", 9999)
	testutil.CreateCourse(t, repo, "Advanced JavaScript", 7999)

	courses, err := svc.QueryAll(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Advanced JavaScript", courses[0].Name)
	assert.Equal(t, "React Fundamentals", courses[1].Name)
}

func TestService_Seed(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	stale := testutil.CreateCourse(t, repo, "React Fundamentals", 1)

	for i := 0; i < 2; i++ {
		seeded, err := svc.Seed(ctx)
		require.NoError(t, err)
		require.Len(t, seeded, len(course.Defaults))
	}

	courses, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, courses, len(course.Defaults))

	react, err := svc.GetByName(ctx, "React Fundamentals")
	require.NoError(t, err)
	assert.Equal(t, stale.ID, react.ID)
	assert.Equal(t, float64(9999), react.Amount)
	assert.Equal(t, "3 months", react.Duration)
}

func TestService_NamesByID(t *testing.T) {
	svc, repo := setup(t)
	react := testutil.CreateCourse(t, repo, "React Fundamentals", 9999)

	names, err := svc.NamesByID(context.Background(), react.ID, "unknown")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{react.ID: "React Fundamentals"}, names)

	names, err = svc.NamesByID(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSuggestNames(t *testing.T) {
	courses := []course.Course{{Name: "Full Stack Web Development"}, {Name: "Advanced JavaScript"}, {Name: "React Fundamentals"}}

	tests := []struct {
		name  string
		query string
		first string
	}{
		{name: "typo", query: "React Fundamental", first: "React Fundamentals"},
		{name: "lowercase", query: "advanced javascript", first: "Advanced JavaScript"},
		{name: "partial", query: "full stack", first: "Full Stack Web Development"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := course.SuggestNames(tt.query, courses)
			require.Len(t, got, len(courses))
			assert.Equal(t, tt.first, got[0])
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := course.NotFoundError("course", "Nonexistent Course", []course.Course{{Name: "React Fundamentals"}})

	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.True(t, errors.Is(vErr.Err, course.ErrNotFound))
	assert.Equal(t, []core.FieldError{{
		Field: "course",
		Error: `Course "Nonexistent Course" not found. Available courses: React Fundamentals`,
	}}, vErr.Fields)
}
