package main

import (
	"errors"

	"github.com/boopathidas/upskillglobal/storage/database"
)

var (
	gooseRunFunc = database.RunMigrations // mockable

	errNoSQLDatabase = errors.New("migrations only apply to the postgres engine")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.stores.SQL == nil {
		return errNoSQLDatabase
	}
	return gooseRunFunc(args[0], cli.stores.SQL, args[1:]...)
}
