package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/sheet"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	out      io.Writer
	credSvc  *credential.Service
	marksSvc *marks.Service
	sheetSvc *sheet.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...]     - run a goose command (up, down, status, redo...)")
	fmt.Fprintln(cli.out, "  setadmin -username USERNAME   - create or replace the admin credential")
	fmt.Fprintln(cli.out, "  export -test ID               - print the mark sheet of a test")
	fmt.Fprintln(cli.out, "  roster -test ID -file FILE    - load a test's roll list from an xlsx file")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	setAdminCmd := flag.NewFlagSet("setadmin", flag.ContinueOnError)
	setAdminCmd.SetOutput(cli.out)
	setAdminUname := setAdminCmd.String("username", "", "The admin username. The password will be prompted next.")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportCmd.SetOutput(cli.out)
	exportTest := exportCmd.Int64("test", 0, "The test ID.")

	rosterCmd := flag.NewFlagSet("roster", flag.ContinueOnError)
	rosterCmd.SetOutput(cli.out)
	rosterTest := rosterCmd.Int64("test", 0, "The test ID.")
	rosterFile := rosterCmd.String("file", "", "The xlsx roll list (\"Register Number\" and \"Name\" columns).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "setadmin":
		if err := setAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setAdminUname == "" {
			setAdminCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			setAdminCmd.Usage()
			return errHelp
		}
		return cli.setAdmin(*setAdminUname, string(pwd))
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportTest <= 0 {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(*exportTest)
	case "roster":
		if err := rosterCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *rosterTest <= 0 || *rosterFile == "" {
			rosterCmd.Usage()
			return errHelp
		}
		return cli.roster(*rosterTest, *rosterFile)
	default:
		cli.printUsage()
		return errHelp
	}
}
