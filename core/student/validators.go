package student

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/boopathidas/upskillglobal/core"
)

var (
	nowFunc = time.Now // mockable

	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)

	dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

	// custom validation tags & their texts, keyed by field name
	trimmedMin2Tag   = "trimmedmin2"
	trimmedMin2Texts = map[string]string{
		"firstName": "First name must be at least 2 characters long",
		"lastName":  "Last name must be at least 2 characters long",
	}

	emailAddrTag   = "emailaddr"
	emailAddrTexts = map[string]string{
		"email": "Please provide a valid email address",
	}

	phone10Tag   = "phone10"
	phone10Texts = map[string]string{
		"phone":                 "Please provide a valid 10-digit phone number",
		"emergencyContactPhone": "Emergency contact phone must be a 10-digit number",
	}

	isoDateTag   = "isodate"
	isoDateTexts = map[string]string{
		"dateOfBirth": "Date of birth must be a valid date",
	}

	notFutureTag   = "notfuture"
	notFutureTexts = map[string]string{
		"dateOfBirth": "Date of birth cannot be in the future",
	}

	genderTag   = "gender"
	genderTexts = map[string]string{
		"gender": "Gender must be one of: Male, Female, Other",
	}
)

// InitValidators registers the registration rules on validate.
// core.InitValidators must have been called on validate first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(trimmedMin2Tag, trimmedMin2Validation)
	registerFieldTranslations(validate, translator, trimmedMin2Tag, trimmedMin2Texts)

	_ = validate.RegisterValidation(emailAddrTag, emailAddrValidation)
	registerFieldTranslations(validate, translator, emailAddrTag, emailAddrTexts)

	_ = validate.RegisterValidation(phone10Tag, phone10Validation)
	registerFieldTranslations(validate, translator, phone10Tag, phone10Texts)

	_ = validate.RegisterValidation(isoDateTag, isoDateValidation)
	registerFieldTranslations(validate, translator, isoDateTag, isoDateTexts)

	_ = validate.RegisterValidation(notFutureTag, notFutureValidation)
	registerFieldTranslations(validate, translator, notFutureTag, notFutureTexts)

	_ = validate.RegisterValidation(genderTag, genderValidation)
	registerFieldTranslations(validate, translator, genderTag, genderTexts)
}

// registerFieldTranslations registers one message per field for tag.
// Fields without a dedicated message fall back to "<field> is invalid".
func registerFieldTranslations(validate *validator.Validate, translator ut.Translator, tag string, texts map[string]string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error {
			if err := t.Add(tag, "{0} is invalid", false); err != nil {
				return err
			}
			for field, text := range texts {
				if err := t.Add(tag+"."+field, text, false); err != nil {
					return err
				}
			}
			return nil
		},
		func(t ut.Translator, fe validator.FieldError) string {
			if s, err := t.T(tag + "." + fe.Field()); err == nil {
				return s
			}
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Check runs every registration rule and returns the violations in field order.
// An empty result means the payload is structurally valid.
func (r Registration) Check(validate *validator.Validate, translator ut.Translator) []core.FieldError {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok {
		return core.FieldErrors(errs, translator)
	}
	return []core.FieldError{{Field: "", Error: err.Error()}}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// Custom Validators

func trimmedMin2Validation(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= 2
}

func emailAddrValidation(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func phone10Validation(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func isoDateValidation(fl validator.FieldLevel) bool {
	_, err := parseDate(fl.Field().String())
	return err == nil
}

// notFutureValidation passes unparseable dates; isodate reports those.
func notFutureValidation(fl validator.FieldLevel) bool {
	d, err := parseDate(fl.Field().String())
	if err != nil {
		return true
	}
	return !d.After(nowFunc())
}

func genderValidation(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	for _, g := range Genders {
		if strings.EqualFold(val, g) {
			return true
		}
	}
	return false
}
