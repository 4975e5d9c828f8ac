package main

import (
	"context"

	"github.com/fatih/color"
)

// setAdmin creates or replaces the admin credential.
func (cli *commandLine) setAdmin(uname, pwd string) error {
	cred, err := cli.credSvc.SetAdmin(context.Background(), uname, pwd)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cli.out, "admin credential %q saved\n", cred.Username)
	return nil
}
