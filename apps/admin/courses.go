package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) seedCourses(ctx context.Context) error {
	courses, err := cli.courseSvc.Seed(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Seeded %d courses\n", len(courses))
	return nil
}

func (cli *commandLine) listCourses(ctx context.Context) error {
	courses, err := cli.courseSvc.QueryAll(ctx)
	if err != nil {
		return err
	}
	for _, c := range courses {
		fmt.Fprintf(cli.out, "- Name: %s, ID: %s\n", c.Name, c.ID)
	}
	return nil
}
