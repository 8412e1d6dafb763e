package main

import (
	"context"
	"fmt"

	"github.com/kat-co/vala"
)

func (cli *commandLine) resetPassword(ctx context.Context, uname, pwd string) error {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(uname, "username"),
		vala.StringNotEmpty(pwd, "password"),
	).Check(); err != nil {
		return err
	}
	if err := cli.studSvc.SetPassword(ctx, uname, pwd); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Password updated for %s\n", uname)
	return nil
}
