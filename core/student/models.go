package student

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/boopathidas/upskillglobal/core"
)

// Genders
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Payment statuses
const (
	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
)

// OrderByCreatedAt is the only ordering field supported by Repository.QueryStudents.
const OrderByCreatedAt = "created_at"

var Genders = []string{GenderMale, GenderFemale, GenderOther}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Student struct {
	ID               string           `json:"id"`
	FullName         string           `json:"fullName"`
	Username         string           `json:"username"`
	PasswordHash     []byte           `json:"-"`
	Email            string           `json:"email"`
	MobileNumber     string           `json:"mobileNumber"`
	CourseID         *string          `json:"courseId"`
	Qualification    string           `json:"qualification"`
	Gender           string           `json:"gender"`
	Address          Address          `json:"address"`
	DateOfBirth      *time.Time       `json:"dateOfBirth"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	PaymentStatus    string           `json:"paymentStatus"`
	EnrollmentDate   time.Time        `json:"enrollmentDate"` // UTC
	CreatedAt        time.Time        `json:"createdAt"`      // UTC
	UpdatedAt        time.Time        `json:"updatedAt"`      // UTC
}

func (s *Student) SetPassword(pwd string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// Registration is the payload submitted by the registration form.
// Every field is untrusted; nothing is trimmed before Check runs.
type Registration struct {
	FirstName             string `json:"firstName" validate:"trimmedmin2"`
	LastName              string `json:"lastName" validate:"trimmedmin2"`
	Email                 string `json:"email" validate:"emailaddr"`
	Phone                 string `json:"phone" validate:"phone10"`
	DateOfBirth           string `json:"dateOfBirth" validate:"omitempty,isodate,notfuture"`
	Gender                string `json:"gender" validate:"omitempty,gender"`
	Address               string `json:"address"`
	City                  string `json:"city"`
	State                 string `json:"state"`
	Country               string `json:"country"`
	PostalCode            string `json:"postalCode"`
	Course                string `json:"course"`
	EducationLevel        string `json:"educationLevel"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone" validate:"omitempty,phone10"`
}

// normalize builds the Student described by a checked Registration.
func (r Registration) normalize(now time.Time) Student {
	first := core.CleanString(r.FirstName)
	last := core.CleanString(r.LastName)

	gender := core.TitleCase(r.Gender)
	if gender == "" {
		gender = GenderOther
	}

	var dob *time.Time
	if d, err := parseDate(r.DateOfBirth); err == nil {
		dob = &d
	}

	return Student{
		FullName:      strings.TrimSpace(first + " " + last),
		Email:         core.CleanString(r.Email, true /* lower */),
		MobileNumber:  core.CleanString(r.Phone),
		Qualification: core.CleanString(r.EducationLevel),
		Gender:        gender,
		Address: Address{
			Street:     core.CleanString(r.Address),
			City:       core.CleanString(r.City),
			State:      core.CleanString(r.State),
			Country:    core.CleanString(r.Country),
			PostalCode: core.CleanString(r.PostalCode),
		},
		DateOfBirth: dob,
		EmergencyContact: EmergencyContact{
			Name:  core.CleanString(r.EmergencyContactName),
			Phone: core.CleanString(r.EmergencyContactPhone),
		},
		PaymentStatus:  PaymentPending,
		EnrollmentDate: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Login contains the credentials submitted to the login endpoint.
type Login struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RosterEntry is the public projection of a Student listed in the enrollment roster.
type RosterEntry struct {
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Course    *string   `json:"course"` // course name
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is a Student with its course name resolved.
type Profile struct {
	Student
	Course *string `json:"course"` // course name
}

type CourseCount struct {
	Course string `json:"course"`
	Count  int    `json:"count"`
}

type Stats struct {
	TotalStudents    int           `json:"totalStudents"`
	CourseEnrollment []CourseCount `json:"courseEnrollment"`
}
