package adapters

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"hub-versions/internal/ports"
	"hub-versions/internal/types"
)

// reportHeader is the column order shared by every sink.
var reportHeader = []string{
	"Repository",
	"Namespace",
	"Name",
	"Latest Version",
	"Minimal Ansible Core Version",
	"Status",
	"Downloads",
	"Authors",
}

func rowCells(row types.ResultRow) []string {
	return []string{
		string(row.Repository),
		row.Namespace,
		row.Name,
		row.LatestVersion,
		row.MinimalVersionString(),
		string(row.Status),
		fmt.Sprintf("%d", row.DownloadCount),
		row.AuthorsString(),
	}
}

// ReportConsoleAdapter prints the report as an aligned table followed
// by any run warnings.
type ReportConsoleAdapter struct {
	Out io.Writer
}

func NewReportConsoleAdapter() ReportConsoleAdapter {
	return ReportConsoleAdapter{Out: os.Stdout}
}

func (a ReportConsoleAdapter) Write(report types.Report) error {
	out := a.Out
	if out == nil {
		out = os.Stdout
	}
	table := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	printTabRow(table, reportHeader)
	for _, row := range report.Rows {
		printTabRow(table, rowCells(row))
	}
	if err := table.Flush(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write report table").
			WithCause(err)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(out, "warning: %s: %s\n", warning.Repository, warning.Message)
	}
	return nil
}

func printTabRow(table *tabwriter.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(table, "\t")
		}
		fmt.Fprint(table, cell)
	}
	fmt.Fprintln(table)
}

var _ ports.ReportSinkPort = ReportConsoleAdapter{}
