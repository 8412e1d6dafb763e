package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/course"
	"github.com/boopathidas/upskillglobal/core/student"
	"github.com/boopathidas/upskillglobal/services/logger"
	"github.com/boopathidas/upskillglobal/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(logsvc.NewSlog(os.Stderr, conf), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.Timeout*3)
	stores, err := database.Open(ctx, conf)
	cancel()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	courseSvc := course.NewService(stores.Courses, validate)

	// start CLI
	cli := commandLine{
		stores:    stores,
		courseSvc: courseSvc,
		studSvc:   student.NewService(conf, stores.Students, courseSvc, nil /* mailSvc */, validate, translator),
		out:       os.Stdout,
	}
	err = cli.run(os.Args[1:])

	ctx, cancel = context.WithTimeout(context.Background(), conf.Database.Timeout)
	defer cancel()
	if cErr := stores.Close(ctx); cErr != nil {
		logger.Error("closing database", cErr)
	}

	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		cancel()
		os.Exit(1)
	}
}
