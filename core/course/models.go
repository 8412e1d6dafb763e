package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/boopathidas/upskillglobal/core"
)

type Course struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Syllabus  string    `json:"syllabus"`
	Duration  string    `json:"duration"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name     string   `json:"name" validate:"required,notblank"`
	Syllabus string   `json:"syllabus" validate:"required,notblank"`
	Duration string   `json:"duration" validate:"required,notblank"`
	Amount   *float64 `json:"amount" validate:"required,gte=0"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Syllabus = core.CleanString(nc.Syllabus)
	nc.Duration = core.CleanString(nc.Duration)
	return validate.Struct(nc)
}

// Defaults are the courses created by the admin `seed-courses` command.
var Defaults = []Course{
	{
		Name:     "React Fundamentals",
		Syllabus: "Learn the basics of React including components, props, state, and hooks",
		Duration: "3 months",
		Amount:   9999,
	},
	{
		Name:     "Advanced JavaScript",
		Syllabus: "Deep dive into JavaScript concepts including closures, promises, and async/await",
		Duration: "2 months",
		Amount:   7999,
	},
	{
		Name:     "Full Stack Web Development",
		Syllabus: "Complete web development course covering frontend and backend technologies",
		Duration: "6 months",
		Amount:   24999,
	},
}
