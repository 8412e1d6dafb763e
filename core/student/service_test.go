package student_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/course"
	"github.com/boopathidas/upskillglobal/core/student"
	"github.com/boopathidas/upskillglobal/services/email"
	"github.com/boopathidas/upskillglobal/storage/database/inmem"
	"github.com/boopathidas/upskillglobal/tests"
)

type fixture struct {
	svc        *student.Service
	studRepo   student.Repository
	courseRepo course.Repository
}

func setup(t *testing.T) fixture {
	t.Helper()
	conf := core.NewTestConfig()
	validate, translator := testutil.NewValidator()

	db := inmemdb.Open()
	studRepo := inmemdb.NewStudentRepository(db)
	courseRepo := inmemdb.NewCourseRepository(db)
	courseSvc := course.NewService(courseRepo, validate)

	emailsvc.ClearSentMessages()
	return fixture{
		svc:        student.NewService(conf, studRepo, courseSvc, emailsvc.NewConsoleServiceMock(conf), validate, translator),
		studRepo:   studRepo,
		courseRepo: courseRepo,
	}
}

func annLee() student.Registration {
	return student.Registration{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann@x.com",
		Phone:     "9876543210",
		Gender:    "female",
		Course:    "React Fundamentals",
	}
}

func TestService_Register(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	react := testutil.CreateCourse(t, f.courseRepo, "React Fundamentals", 9999)
	testutil.CreateCourse(t, f.courseRepo, "Advanced JavaScript", 7999)

	stud, creds, err := f.svc.Register(ctx, annLee())
	require.NoError(t, err)

	wantUsername := fmt.Sprintf("annlee%d", time.Now().Year())
	assert.Equal(t, wantUsername, creds.Username)
	assert.Len(t, creds.Password, 8)

	stored, err := f.studRepo.GetStudentByUsername(ctx, wantUsername)
	require.NoError(t, err)
	assert.Equal(t, stud.ID, stored.ID)
	assert.Equal(t, "Ann Lee", stored.FullName)
	assert.Equal(t, student.GenderFemale, stored.Gender)
	assert.Equal(t, student.PaymentPending, stored.PaymentStatus)
	if assert.NotNil(t, stored.CourseID) {
		assert.Equal(t, react.ID, *stored.CourseID)
	}

	// the plaintext password only verifies against the stored hash
	assert.NoError(t, stored.CheckPassword(creds.Password))
	assert.False(t, bytes.Contains(stored.PasswordHash, []byte(creds.Password)))
	for _, v := range []string{stored.FullName, stored.Username, stored.Email, stored.MobileNumber, stored.Qualification} {
		assert.NotEqual(t, creds.Password, v)
	}

	// welcome mail carries the username, never the password
	sent := emailsvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ann@x.com", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, wantUsername)
	assert.Contains(t, sent[0].TextContent, "React Fundamentals")
	assert.NotContains(t, sent[0].TextContent, creds.Password)
	assert.NotContains(t, sent[0].HTMLContent, creds.Password)
}

func TestService_Register_errors(t *testing.T) {
	tests := []struct {
		name      string
		reg       func() student.Registration
		wantField string
		wantMsg   []string
		conflict  bool
	}{
		{
			name:      "invalid payload",
			reg:       func() student.Registration { r := annLee(); r.Phone = "123"; return r },
			wantField: "phone",
			wantMsg:   []string{"Please provide a valid 10-digit phone number"},
		},
		{
			name:      "unknown course",
			reg:       func() student.Registration { r := annLee(); r.Course = "Nonexistent Course"; return r },
			wantField: "course",
			wantMsg:   []string{`Course "Nonexistent Course" not found`, "React Fundamentals", "Advanced JavaScript"},
		},
		{
			name:      "duplicate email",
			reg:       func() student.Registration { r := annLee(); r.FirstName = "Anna"; r.Email = " ANN@x.com "; return r },
			wantField: "email",
			conflict:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()
			testutil.CreateCourse(t, f.courseRepo, "React Fundamentals", 9999)
			testutil.CreateCourse(t, f.courseRepo, "Advanced JavaScript", 7999)
			testutil.CreateStudent(t, f.studRepo, "Ann Lee", "existing", "ann@x.com", "pwd", nil)

			_, _, err := f.svc.Register(ctx, tt.reg())
			require.Error(t, err)

			if tt.conflict {
				var cErr *core.ConflictError
				require.True(t, errors.As(err, &cErr), "got %T", err)
				assert.Equal(t, tt.wantField, cErr.Field)
			} else {
				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr), "got %T", err)
				require.Len(t, vErr.Fields, 1)
				assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
				for _, msg := range tt.wantMsg {
					assert.Contains(t, vErr.Fields[0].Error, msg)
				}
			}

			studs, err := f.studRepo.QueryStudents(ctx, core.Ordering{Field: student.OrderByCreatedAt})
			require.NoError(t, err)
			assert.Len(t, studs, 1, "nothing new must be persisted")
		})
	}
}

func TestService_Register_withoutCourse(t *testing.T) {
	f := setup(t)
	reg := annLee()
	reg.Course = "  "
	reg.Gender = ""

	stud, _, err := f.svc.Register(context.Background(), reg)
	require.NoError(t, err)
	assert.Nil(t, stud.CourseID)
	assert.Equal(t, student.GenderOther, stud.Gender)
}

func TestService_Register_usernameCollision(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	base := fmt.Sprintf("annlee%d", time.Now().Year())

	reg := annLee()
	reg.Course = ""
	for i, want := range []string{base, base + "2", base + "3"} {
		reg.Email = fmt.Sprintf("ann%d@x.com", i)
		_, creds, err := f.svc.Register(ctx, reg)
		require.NoError(t, err)
		assert.Equal(t, want, creds.Username)
	}
}

func TestService_Register_concurrentDuplicates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	reg := annLee()
	reg.Course = ""

	const n = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.Register(ctx, reg)
			mu.Lock()
			defer mu.Unlock()
			var cErr *core.ConflictError
			switch {
			case err == nil:
				successes++
			case errors.As(err, &cErr) && cErr.Field == "email":
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
	studs, err := f.studRepo.QueryStudents(ctx, core.Ordering{Field: student.OrderByCreatedAt})
	require.NoError(t, err)
	assert.Len(t, studs, 1)
}

func TestService_Authenticate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	stud := testutil.CreateStudent(t, f.studRepo, "Ann Lee", "annlee2026", "ann@x.com", "Secret12", nil)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{name: "valid", username: "annlee2026", password: "Secret12"},
		{name: "valid, un-normalized username", username: "  AnnLee2026 ", password: "Secret12"},
		{name: "wrong password", username: "annlee2026", password: "secret12", wantErr: true},
		{name: "unknown username", username: "bob", password: "Secret12", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Authenticate(ctx, tt.username, tt.password)
			if tt.wantErr {
				var aErr *core.AuthenticationError
				require.True(t, errors.As(err, &aErr), "got %T", err)
				assert.EqualError(t, err, "invalid credentials")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, stud.ID, got.ID)
		})
	}
}

func TestService_Roster(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	react := testutil.CreateCourse(t, f.courseRepo, "React Fundamentals", 9999)

	now := time.Now()
	testutil.CreateStudent(t, f.studRepo, "Old One", "old", "old@x.com", "", &react.ID, now.Add(-2*time.Hour))
	testutil.CreateStudent(t, f.studRepo, "New One", "new", "new@x.com", "", nil, now)
	testutil.CreateStudent(t, f.studRepo, "Mid One", "mid", "mid@x.com", "", &react.ID, now.Add(-time.Hour))

	roster, err := f.svc.Roster(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 3)

	names := make([]string, 0, len(roster))
	for _, e := range roster {
		names = append(names, e.FullName)
	}
	assert.Equal(t, []string{"New One", "Mid One", "Old One"}, names)
	assert.Nil(t, roster[0].Course)
	if assert.NotNil(t, roster[1].Course) {
		assert.Equal(t, "React Fundamentals", *roster[1].Course)
	}
}

func TestService_Stats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	react := testutil.CreateCourse(t, f.courseRepo, "React Fundamentals", 9999)
	js := testutil.CreateCourse(t, f.courseRepo, "Advanced JavaScript", 7999)

	for i, courseID := range []*string{&react.ID, &react.ID, &js.ID, nil} {
		testutil.CreateStudent(t, f.studRepo, "S", fmt.Sprintf("s%d", i), fmt.Sprintf("s%d@x.com", i), "", courseID)
	}

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalStudents)
	assert.Equal(t, []student.CourseCount{
		{Course: "React Fundamentals", Count: 2},
		{Course: "Advanced JavaScript", Count: 1},
		{Course: "Unassigned", Count: 1},
	}, stats.CourseEnrollment)
}

func TestService_Profile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	react := testutil.CreateCourse(t, f.courseRepo, "React Fundamentals", 9999)
	stud := testutil.CreateStudent(t, f.studRepo, "Ann Lee", "annlee2026", "ann@x.com", "", &react.ID)

	prof, err := f.svc.Profile(ctx, stud.ID)
	require.NoError(t, err)
	assert.Equal(t, "annlee2026", prof.Username)
	if assert.NotNil(t, prof.Course) {
		assert.Equal(t, "React Fundamentals", *prof.Course)
	}

	_, err = f.svc.Profile(ctx, "unknown")
	assert.True(t, errors.Is(err, student.ErrNotFound))
}

func TestService_SetPassword(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	stud := testutil.CreateStudent(t, f.studRepo, "Ann Lee", "annlee2026", "ann@x.com", "old-pwd", nil)

	require.NoError(t, f.svc.SetPassword(ctx, "AnnLee2026", "new-pwd"))
	_, err := f.svc.Authenticate(ctx, stud.Username, "new-pwd")
	assert.NoError(t, err)

	err = f.svc.SetPassword(ctx, "nobody", "pwd")
	assert.True(t, errors.Is(err, student.ErrNotFound))
}
