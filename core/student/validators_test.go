package student

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/boopathidas/upskillglobal/core"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

var translator = core.NewTranslator()

func TestRegistration_Check(t *testing.T) {
	nowFunc = func() time.Time { return time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = time.Now }()

	validate := newValidator()
	valid := Registration{FirstName: "Ann", LastName: "Lee", Email: "ann@x.com", Phone: "9876543210"}
	with := func(mutate func(r *Registration)) Registration {
		r := valid
		mutate(&r)
		return r
	}

	var (
		firstNameErr = core.FieldError{Field: "firstName", Error: "First name must be at least 2 characters long"}
		lastNameErr  = core.FieldError{Field: "lastName", Error: "Last name must be at least 2 characters long"}
		emailErr     = core.FieldError{Field: "email", Error: "Please provide a valid email address"}
		phoneErr     = core.FieldError{Field: "phone", Error: "Please provide a valid 10-digit phone number"}
		dobFutureErr = core.FieldError{Field: "dateOfBirth", Error: "Date of birth cannot be in the future"}
		dobInvalErr  = core.FieldError{Field: "dateOfBirth", Error: "Date of birth must be a valid date"}
		genderErr    = core.FieldError{Field: "gender", Error: "Gender must be one of: Male, Female, Other"}
		emergencyErr = core.FieldError{Field: "emergencyContactPhone", Error: "Emergency contact phone must be a 10-digit number"}
	)

	tests := []struct {
		name string
		reg  Registration
		want []core.FieldError
	}{
		{name: "valid", reg: valid},
		{
			name: "valid with optional fields",
			reg: with(func(r *Registration) {
				r.DateOfBirth = "2000-05-01"
				r.Gender = "FEMALE"
				r.EmergencyContactPhone = "0123456789"
			}),
		},
		{name: "valid RFC3339 date of birth", reg: with(func(r *Registration) { r.DateOfBirth = "2000-05-01T10:00:00Z" })},
		{name: "date of birth today", reg: with(func(r *Registration) { r.DateOfBirth = "2026-10-16" })},
		{name: "empty payload", reg: Registration{}, want: []core.FieldError{firstNameErr, lastNameErr, emailErr, phoneErr}},
		{name: "blank first name", reg: with(func(r *Registration) { r.FirstName = "   " }), want: []core.FieldError{firstNameErr}},
		{name: "short trimmed first name", reg: with(func(r *Registration) { r.FirstName = " A " }), want: []core.FieldError{firstNameErr}},
		{name: "short last name", reg: with(func(r *Registration) { r.LastName = "L" }), want: []core.FieldError{lastNameErr}},
		{name: "email without tld", reg: with(func(r *Registration) { r.Email = "ann@x" }), want: []core.FieldError{emailErr}},
		{name: "email with space", reg: with(func(r *Registration) { r.Email = "ann lee@x.com" }), want: []core.FieldError{emailErr}},
		{name: "short phone", reg: with(func(r *Registration) { r.Phone = "12345" }), want: []core.FieldError{phoneErr}},
		{name: "long phone", reg: with(func(r *Registration) { r.Phone = "98765432101" }), want: []core.FieldError{phoneErr}},
		{name: "non numeric phone", reg: with(func(r *Registration) { r.Phone = "98765abcde" }), want: []core.FieldError{phoneErr}},
		{name: "future date of birth", reg: with(func(r *Registration) { r.DateOfBirth = "2030-01-01" }), want: []core.FieldError{dobFutureErr}},
		{name: "invalid date of birth", reg: with(func(r *Registration) { r.DateOfBirth = "not-a-date" }), want: []core.FieldError{dobInvalErr}},
		{name: "unknown gender", reg: with(func(r *Registration) { r.Gender = "robot" }), want: []core.FieldError{genderErr}},
		{name: "short emergency phone", reg: with(func(r *Registration) { r.EmergencyContactPhone = "123" }), want: []core.FieldError{emergencyErr}},
		{
			name: "every rule violated",
			reg: Registration{
				FirstName:             "A",
				LastName:              "",
				Email:                 "nope",
				Phone:                 "1",
				DateOfBirth:           "2999-01-01",
				Gender:                "x",
				EmergencyContactPhone: "2",
			},
			want: []core.FieldError{firstNameErr, lastNameErr, emailErr, phoneErr, dobFutureErr, genderErr, emergencyErr},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.reg.Check(validate, translator))
		})
	}
}

func TestRegistration_normalize(t *testing.T) {
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	reg := Registration{
		FirstName:             "  Ann ",
		LastName:              "Lee",
		Email:                 " Ann@X.com ",
		Phone:                 "9876543210",
		DateOfBirth:           "2000-05-01",
		Gender:                "fEMALE",
		City:                  " Pune ",
		EducationLevel:        "B.Sc",
		EmergencyContactName:  "Bob Lee",
		EmergencyContactPhone: "0123456789",
	}

	stud := reg.normalize(now)
	assert.Equal(t, "Ann Lee", stud.FullName)
	assert.Equal(t, "ann@x.com", stud.Email)
	assert.Equal(t, GenderFemale, stud.Gender)
	assert.Equal(t, "Pune", stud.Address.City)
	assert.Equal(t, "B.Sc", stud.Qualification)
	assert.Equal(t, EmergencyContact{Name: "Bob Lee", Phone: "0123456789"}, stud.EmergencyContact)
	assert.Equal(t, PaymentPending, stud.PaymentStatus)
	assert.Equal(t, now, stud.CreatedAt)
	if assert.NotNil(t, stud.DateOfBirth) {
		assert.Equal(t, time.Date(2000, time.May, 1, 0, 0, 0, 0, time.UTC), *stud.DateOfBirth)
	}
	assert.Nil(t, stud.CourseID)

	reg.Gender = ""
	reg.DateOfBirth = ""
	stud = reg.normalize(now)
	assert.Equal(t, GenderOther, stud.Gender)
	assert.Nil(t, stud.DateOfBirth)
}
