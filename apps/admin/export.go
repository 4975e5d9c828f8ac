package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/trezcool/adrap/core/sheet"
)

// export prints the mark sheet of a test: metadata lines, then the marks table.
func (cli *commandLine) export(testID int64) error {
	e, err := cli.sheetSvc.Export(context.Background(), testID)
	if err != nil {
		return err
	}
	s := sheet.Build(e)

	title := color.New(color.FgYellow)
	title.Fprintf(cli.out, "\n%s\n", sheet.FileName(e))
	for _, row := range s.Metadata {
		cells := sheet.Strings(row)
		fmt.Fprintf(cli.out, "%-14s %s\n", cells[0], cells[1])
	}
	fmt.Fprintln(cli.out)

	table := tablewriter.NewWriter(cli.out)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(s.Header)
	table.Append(s.OutcomeHeader)
	for _, row := range s.Rows {
		table.Append(sheet.Strings(row))
	}
	table.Render()

	var submitted int
	for _, st := range e.Students {
		if st.Submitted {
			submitted++
		}
	}
	color.New(color.FgCyan).Fprintf(cli.out, "%d/%d students submitted\n", submitted, len(e.Students))
	return nil
}
