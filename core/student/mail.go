package student

import (
	"net/mail"

	"github.com/boopathidas/upskillglobal/core"
)

type welcomeData struct {
	FullName   string
	Username   string
	CourseName string
}

// sendWelcomeMail notifies a new student of their username. It never carries the password.
func (svc *Service) sendWelcomeMail(stud Student, courseName string) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: stud.FullName, Address: stud.Email}},
		Subject:      "Welcome aboard!",
		TemplateName: "welcome",
		TemplateData: welcomeData{
			FullName:   stud.FullName,
			Username:   stud.Username,
			CourseName: courseName,
		},
	})
}
