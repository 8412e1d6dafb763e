package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/course"
	"github.com/boopathidas/upskillglobal/core/student"
)

// NewValidator returns a validator with every custom rule registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	return validate, translator
}

func CreateCourse(t *testing.T, repo course.Repository, name string, amount float64) course.Course {
	c, err := repo.CreateCourse(context.Background(), course.Course{
		Name:      name,
		Syllabus:  name + " syllabus",
		Duration:  "3 months",
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	fullName, uname, email, pwd string,
	courseID *string,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	stud := student.Student{
		FullName:       fullName,
		Username:       uname,
		Email:          email,
		MobileNumber:   "9876543210",
		CourseID:       courseID,
		Gender:         student.GenderOther,
		PaymentStatus:  student.PaymentPending,
		EnrollmentDate: tstamp,
		CreatedAt:      tstamp,
		UpdatedAt:      tstamp,
	}
	if pwd != "" {
		if err := stud.SetPassword(pwd, core.NewTestConfig().BcryptCost); err != nil {
			t.Fatalf("CreateStudent() failed: %v", err)
		}
	}
	stud, err := repo.CreateStudent(context.Background(), stud)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stud
}
