package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/course"
	"github.com/boopathidas/upskillglobal/core/student"
	"github.com/boopathidas/upskillglobal/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	stores    *database.Stores
	courseSvc *course.Service
	studSvc   *student.Service
	out       io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Upskill Global administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		&cobra.Command{
			Use:   "seed-courses",
			Short: "Create or update the default courses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.seedCourses(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "list-courses",
			Short: "List all courses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.listCourses(cmd.Context())
			},
		},
		cli.resetPasswordCmd(),
		&cobra.Command{
			Use:                "migrate COMMAND [ARGS...]",
			Short:              "Run database migrations (postgres only)",
			Long:               "Run goose commands (up, up-by-one, up-to, down, down-to, redo, reset, status, version, fix) against the postgres database.",
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					_ = cmd.Usage()
					return errHelp
				}
				return cli.migrate(args)
			},
		},
	)
	return root
}

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var uname string
	cmd := &cobra.Command{
		Use:   "reset-password --username USERNAME",
		Short: "Reset a student's password. The password is prompted next.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if core.CleanString(uname) == "" {
				_ = cmd.Usage()
				return errHelp
			}
			fmt.Fprint(cli.out, "Enter password:")
			pwd, err := readPasswordFunc(int(syscall.Stdin))
			fmt.Fprintln(cli.out)
			if err != nil {
				return err
			}
			return cli.resetPassword(cmd.Context(), uname, string(pwd))
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "The student's username")
	return cmd
}

// run executes the command named in args (program name excluded).
func (cli *commandLine) run(args []string) error {
	if cli.out == nil {
		cli.out = os.Stdout
	}
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.Execute()
}
