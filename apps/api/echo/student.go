package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/student"
)

const registrationSuccessMsg = "Registration successful"

// metric outcomes
const (
	outcomeSuccess  = "success"
	outcomeInvalid  = "invalid"
	outcomeConflict = "conflict"
	outcomeError    = "error"
)

type (
	registerResponse struct {
		Message  string `json:"message"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	loginStudent struct {
		ID       string  `json:"id"`
		Username string  `json:"username"`
		Course   *string `json:"course"` // course ID
	}

	loginResponse struct {
		Token   string       `json:"token"`
		Student loginStudent `json:"student"`
	}
)

type studentApi struct {
	conf    *core.Config
	svc     *student.Service
	deps    ServerDeps
	metrics *Metrics
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{
		conf:    deps.Conf,
		svc:     deps.StudentSvc,
		deps:    deps,
		metrics: deps.Metrics,
	}

	sg := g.Group("/students")

	sg.POST("/register", api.register)
	sg.POST("/login", api.login)
	sg.GET("/enrolled", api.enrolled)
	sg.GET("/stats", api.stats)

	sg.GET("/me", api.me, jwt)
}

// Handlers

func (api *studentApi) register(ctx echo.Context) error {
	var data student.Registration
	if err := ctx.Bind(&data); err != nil {
		api.metrics.registration(outcomeInvalid)
		return errors.Wrap(err, "binding to Registration")
	}

	_, creds, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		api.metrics.registration(registrationOutcome(err))
		return errors.Wrap(err, "registering student")
	}
	api.metrics.registration(outcomeSuccess)

	return ctx.JSON(http.StatusCreated, registerResponse{
		Message:  registrationSuccessMsg,
		Username: creds.Username,
		Password: creds.Password,
	})
}

func (api *studentApi) login(ctx echo.Context) error {
	var data student.Login
	if err := ctx.Bind(&data); err != nil {
		api.metrics.login(outcomeInvalid)
		return errors.Wrap(err, "binding to Login")
	}
	if err := api.deps.Validate.Struct(data); err != nil {
		api.metrics.login(outcomeInvalid)
		return err
	}

	stud, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		var authErr *core.AuthenticationError
		if errors.As(err, &authErr) {
			api.metrics.login(outcomeInvalid)
		} else {
			api.metrics.login(outcomeError)
		}
		return errors.Wrap(err, "authenticating")
	}

	token, err := GenerateToken(GetStudentClaims(stud, api.conf), api.conf)
	if err != nil {
		api.metrics.login(outcomeError)
		return errors.Wrap(err, "generating token")
	}
	api.metrics.login(outcomeSuccess)

	return ctx.JSON(http.StatusOK, loginResponse{
		Token: token,
		Student: loginStudent{
			ID:       stud.ID,
			Username: stud.Username,
			Course:   stud.CourseID,
		},
	})
}

func (api *studentApi) enrolled(ctx echo.Context) error {
	roster, err := api.svc.Roster(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *studentApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *studentApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	prof, err := api.svc.Profile(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, student.ErrNotFound) { // deleted since the token was issued
			return errUnauthorized
		}
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func registrationOutcome(err error) string {
	switch errors.Cause(err).(type) {
	case *core.ValidationError:
		return outcomeInvalid
	case *core.ConflictError:
		return outcomeConflict
	default:
		return outcomeError
	}
}
