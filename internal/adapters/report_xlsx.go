package adapters

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/xuri/excelize/v2"

	"hub-versions/internal/ports"
	"hub-versions/internal/types"
)

const workbookSheetName = "Collections Ansible versions"

// ReportXlsxAdapter serializes the report into a single-sheet workbook.
// An existing file at the target path is replaced.
type ReportXlsxAdapter struct {
	Path string
}

func NewReportXlsxAdapter(path string) ReportXlsxAdapter {
	return ReportXlsxAdapter{Path: path}
}

func (a ReportXlsxAdapter) Write(report types.Report) error {
	path := strings.TrimSpace(a.Path)
	if path == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("workbook path is empty")
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove existing workbook").
			WithCause(err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create workbook directory").
				WithCause(err)
		}
	}
	workbook := excelize.NewFile()
	defer workbook.Close()
	if _, err := workbook.NewSheet(workbookSheetName); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create worksheet").
			WithCause(err)
	}
	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove default worksheet").
			WithCause(err)
	}
	if err := writeSheetRow(workbook, 1, reportHeader); err != nil {
		return err
	}
	for i, row := range report.Rows {
		if err := writeSheetRow(workbook, i+2, rowCells(row)); err != nil {
			return err
		}
	}
	if err := workbook.SaveAs(path); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to save workbook").
			WithCause(err)
	}
	return nil
}

func writeSheetRow(workbook *excelize.File, row int, cells []string) error {
	for i, cell := range cells {
		name, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to compute cell coordinates").
				WithCause(err)
		}
		if err := workbook.SetCellValue(workbookSheetName, name, cell); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write workbook cell").
				WithCause(err)
		}
	}
	return nil
}

var _ ports.ReportSinkPort = ReportXlsxAdapter{}
