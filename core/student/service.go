package student

import (
	"context"
	"errors"
	"sort"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/course"
)

const unassignedCourse = "Unassigned"

var (
	// errors
	ErrNotFound       = errors.New("student not found")
	ErrEmailExists    = errors.New("a student with this email already exists")
	ErrUsernameExists = errors.New("a student with this username already exists")

	errInvalidPayload = errors.New("validation failed")

	dummyHash     []byte
	dummyHashOnce sync.Once
)

type (
	Repository interface {
		// CreateStudent persists a new Student.
		// It returns a *core.ConflictError wrapping ErrUsernameExists or ErrEmailExists on duplicates.
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByUsername(ctx context.Context, username string) (Student, error)
		GetStudentByEmail(ctx context.Context, email string) (Student, error)
		UsernameExists(ctx context.Context, username string) (bool, error)
		QueryStudents(ctx context.Context, ordering core.Ordering) ([]Student, error)
		UpdateStudentPassword(ctx context.Context, id string, hash []byte) error
		// CountByCourse counts students per course ID; students without a course are counted under "".
		CountByCourse(ctx context.Context) (map[string]int, error)
	}

	// CourseLookup resolves courses referenced by students.
	CourseLookup interface {
		GetByName(ctx context.Context, name string) (course.Course, error)
		QueryAll(ctx context.Context) ([]course.Course, error)
		NamesByID(ctx context.Context, ids ...string) (map[string]string, error)
	}

	Service struct {
		conf       *core.Config
		repo       Repository
		courses    CourseLookup
		mailSvc    core.EmailService
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(
	conf *core.Config,
	repo Repository,
	courses CourseLookup,
	mailSvc core.EmailService,
	validate *validator.Validate,
	translator ut.Translator,
) *Service {
	return &Service{
		conf:       conf,
		repo:       repo,
		courses:    courses,
		mailSvc:    mailSvc,
		validate:   validate,
		translator: translator,
	}
}

// Register creates a Student from a registration payload and returns its generated credentials.
func (svc *Service) Register(ctx context.Context, reg Registration) (Student, Credentials, error) {
	if flds := reg.Check(svc.validate, svc.translator); len(flds) > 0 {
		return Student{}, Credentials{}, core.NewValidationError(errInvalidPayload, flds...)
	}

	now := nowFunc().UTC()
	stud := reg.normalize(now)

	var courseName string
	if name := core.CleanString(reg.Course); name != "" {
		c, err := svc.courses.GetByName(ctx, name)
		if err != nil {
			if !errors.Is(err, course.ErrNotFound) {
				return Student{}, Credentials{}, err
			}
			available, err := svc.courses.QueryAll(ctx)
			if err != nil {
				return Student{}, Credentials{}, err
			}
			return Student{}, Credentials{}, course.NotFoundError("course", name, available)
		}
		stud.CourseID = &c.ID
		courseName = c.Name
	}

	// advisory: the repository has the final word
	if _, err := svc.repo.GetStudentByEmail(ctx, stud.Email); err == nil {
		return Student{}, Credentials{}, core.NewConflictError("email", ErrEmailExists)
	} else if !errors.Is(err, ErrNotFound) {
		return Student{}, Credentials{}, err
	}

	pwd, err := GeneratePassword()
	if err != nil {
		return Student{}, Credentials{}, err
	}
	if err = stud.SetPassword(pwd, svc.conf.BcryptCost); err != nil {
		return Student{}, Credentials{}, err
	}

	created, err := svc.create(ctx, stud, BaseUsername(reg.FirstName, reg.LastName, now.Year()))
	if err != nil {
		return Student{}, Credentials{}, err
	}

	svc.sendWelcomeMail(created, courseName)
	return created, Credentials{Username: created.Username, Password: pwd}, nil
}

// create persists stud under the first free username candidate derived from base.
func (svc *Service) create(ctx context.Context, stud Student, base string) (Student, error) {
	for _, uname := range UsernameCandidates(base) {
		exists, err := svc.repo.UsernameExists(ctx, uname)
		if err != nil {
			return Student{}, err
		}
		if exists {
			continue
		}

		stud.Username = uname
		created, err := svc.repo.CreateStudent(ctx, stud)
		if err == nil {
			return created, nil
		}
		var cErr *core.ConflictError
		if errors.As(err, &cErr) && cErr.Field == "username" {
			continue // lost a race for this candidate
		}
		return Student{}, err
	}
	return Student{}, core.NewConflictError("username", ErrUsernameExists)
}

// Authenticate returns the Student matching username and password.
// Unknown usernames and wrong passwords produce the same *core.AuthenticationError.
func (svc *Service) Authenticate(ctx context.Context, username, pwd string) (Student, error) {
	stud, err := svc.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// keep timing close to a real password check
			_ = bcrypt.CompareHashAndPassword(getDummyHash(), []byte(pwd))
			return Student{}, core.NewAuthenticationError()
		}
		return Student{}, err
	}
	if err = stud.CheckPassword(pwd); err != nil {
		return Student{}, core.NewAuthenticationError()
	}
	return stud, nil
}

func getDummyHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-student-password"), bcrypt.DefaultCost)
	})
	return dummyHash
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, username string) (Student, error) {
	return svc.repo.GetStudentByUsername(ctx, core.CleanString(username, true /* lower */))
}

// Profile returns the Student with the given id and its course name.
func (svc *Service) Profile(ctx context.Context, id string) (Profile, error) {
	stud, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	prof := Profile{Student: stud}
	if stud.CourseID != nil {
		names, err := svc.courses.NamesByID(ctx, *stud.CourseID)
		if err != nil {
			return Profile{}, err
		}
		if name, ok := names[*stud.CourseID]; ok {
			prof.Course = &name
		}
	}
	return prof, nil
}

// Roster lists every student, most recently created first.
func (svc *Service) Roster(ctx context.Context) ([]RosterEntry, error) {
	studs, err := svc.repo.QueryStudents(ctx, core.Ordering{Field: OrderByCreatedAt, Ascending: false})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(studs))
	seen := make(map[string]bool, len(studs))
	for _, s := range studs {
		if s.CourseID != nil && !seen[*s.CourseID] {
			seen[*s.CourseID] = true
			ids = append(ids, *s.CourseID)
		}
	}
	names, err := svc.courses.NamesByID(ctx, ids...)
	if err != nil {
		return nil, err
	}

	roster := make([]RosterEntry, 0, len(studs))
	for _, s := range studs {
		entry := RosterEntry{FullName: s.FullName, Email: s.Email, CreatedAt: s.CreatedAt}
		if s.CourseID != nil {
			if name, ok := names[*s.CourseID]; ok {
				entry.Course = &name
			}
		}
		roster = append(roster, entry)
	}
	return roster, nil
}

// Stats counts students overall and per course name.
// Students without a (known) course are counted as "Unassigned".
func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	counts, err := svc.repo.CountByCourse(ctx)
	if err != nil {
		return Stats{}, err
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		if id != "" {
			ids = append(ids, id)
		}
	}
	names, err := svc.courses.NamesByID(ctx, ids...)
	if err != nil {
		return Stats{}, err
	}

	var total int
	byName := make(map[string]int, len(counts))
	for id, n := range counts {
		total += n
		name, ok := names[id]
		if !ok {
			name = unassignedCourse
		}
		byName[name] += n
	}

	enrollment := make([]CourseCount, 0, len(byName))
	for name, n := range byName {
		enrollment = append(enrollment, CourseCount{Course: name, Count: n})
	}
	sort.Slice(enrollment, func(i, j int) bool {
		if enrollment[i].Count == enrollment[j].Count {
			return enrollment[i].Course < enrollment[j].Course
		}
		return enrollment[i].Count > enrollment[j].Count
	})
	return Stats{TotalStudents: total, CourseEnrollment: enrollment}, nil
}

// SetPassword replaces the password of the student with the given username.
func (svc *Service) SetPassword(ctx context.Context, username, pwd string) error {
	stud, err := svc.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err = stud.SetPassword(pwd, svc.conf.BcryptCost); err != nil {
		return err
	}
	return svc.repo.UpdateStudentPassword(ctx, stud.ID, stud.PasswordHash)
}
