package logsvc

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/student"
)

// RollbarLogger reports to Rollbar and writes structured records to a slog.Logger.
type RollbarLogger struct {
	std *slog.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewSlog returns the console logger: text in DEV, JSON otherwise.
func NewSlog(w io.Writer, conf *core.Config) *slog.Logger {
	level := slog.LevelInfo
	if conf.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if conf.Env == "DEV" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func NewRollbarLogger(std *slog.Logger, conf *core.Config) *RollbarLogger {
	if std == nil {
		std = NewSlog(os.Stdout, conf)
	}
	host, _ := os.Hostname()
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, student.Student
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var studSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		// set logged in Student
		if stud, ok := arg.(student.Student); ok {
			if !studSet { // only set one Student
				rollbar.SetPerson(stud.ID, stud.Username, stud.Email)
				studSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !studSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

// attrs converts args into slog key/value pairs.
func (l RollbarLogger) attrs(args []interface{}) []interface{} {
	kvs := make([]interface{}, 0, len(args)*2)
	for i, arg := range args {
		switch a := arg.(type) {
		case error:
			kvs = append(kvs, slog.String("error", fmt.Sprintf("%+v", a)))
		case map[string]interface{}:
			for k, v := range a {
				kvs = append(kvs, slog.Any(k, v))
			}
		case student.Student:
			kvs = append(kvs, slog.Group("student", slog.String("id", a.ID), slog.String("username", a.Username)))
		default:
			kvs = append(kvs, slog.Any(fmt.Sprintf("arg%d", i), a))
		}
	}
	return kvs
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.std.Debug(msg, l.attrs(args)...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.std.Info(msg, l.attrs(args)...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.std.Warn(msg, l.attrs(args)...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.std.Error(msg, l.attrs(args)...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.std.Error(msg, l.attrs(args)...)
	rollbar.Wait()
	os.Exit(1)
}
