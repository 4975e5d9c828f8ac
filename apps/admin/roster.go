package main

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/services/spreadsheet"
)

// roster loads a test's roll list from an xlsx file.
func (cli *commandLine) roster(testID int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening roster file")
	}
	defer f.Close()

	rows, err := spreadsheet.ReadRoster(f)
	if err != nil {
		return err
	}
	recs, err := cli.marksSvc.IngestRoster(context.Background(), testID, rows)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cli.out, "%d students added to test %d\n", len(recs), testID)
	return nil
}
