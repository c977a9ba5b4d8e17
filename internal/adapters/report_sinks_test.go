package adapters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"hub-versions/internal/types"
)

func sampleReport() types.Report {
	return types.Report{
		Rows: []types.ResultRow{
			{
				Repository:            types.RepositoryValidated,
				Namespace:             "ns",
				Name:                  "a",
				LatestVersion:         "1.2.0",
				MinimalAnsibleVersion: &types.MinimalVersion{Major: 2, Minor: 12},
				RawRequirement:        ">=2.12",
				Status:                types.RowStatusOK,
				DownloadCount:         7,
				Authors:               []string{"someone", "someone else"},
			},
			{
				Repository:    types.RepositoryCertified,
				Namespace:     "ns",
				Name:          "b",
				LatestVersion: "3.0.0",
				Status:        types.RowStatusMissing,
			},
		},
		Warnings: []types.RunWarning{
			{Repository: types.RepositoryCertified, Message: "pagination aborted, report is partial: boom"},
		},
	}
}

func TestReportConsoleAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := ReportConsoleAdapter{Out: &buf}
	require.NoError(t, adapter.Write(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Repository")
	assert.Contains(t, out, "Minimal Ansible Core Version")
	assert.Contains(t, out, "2.12")
	assert.Contains(t, out, "ok")
	// Rows without a normalized version render a dash.
	assert.Contains(t, out, "—")
	assert.Contains(t, out, "warning: certified: pagination aborted")
}

func TestReportYAMLAdapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, NewReportYAMLAdapter(path).Write(sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded struct {
		Rows []struct {
			Repository     string `yaml:"repository"`
			Name           string `yaml:"name"`
			MinimalAnsible string `yaml:"minimal_ansible_version"`
			Status         string `yaml:"status"`
		} `yaml:"rows"`
		Warnings []struct {
			Repository string `yaml:"repository"`
		} `yaml:"warnings"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded.Rows, 2)
	assert.Equal(t, "validated", decoded.Rows[0].Repository)
	assert.Equal(t, "2.12", decoded.Rows[0].MinimalAnsible)
	assert.Equal(t, "missing", decoded.Rows[1].Status)
	assert.Empty(t, decoded.Rows[1].MinimalAnsible)
	require.Len(t, decoded.Warnings, 1)
	assert.Equal(t, "certified", decoded.Warnings[0].Repository)
}

func TestReportYAMLAdapterEmptyPath(t *testing.T) {
	err := NewReportYAMLAdapter("").Write(types.Report{})
	assert.Error(t, err)
}

func TestReportXlsxAdapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collections.xlsx")
	require.NoError(t, NewReportXlsxAdapter(path).Write(sampleReport()))

	workbook, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer workbook.Close()

	assert.Equal(t, []string{workbookSheetName}, workbook.GetSheetList())
	rows, err := workbook.GetRows(workbookSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Repository", rows[0][0])
	assert.Equal(t, "Status", rows[0][5])
	assert.Equal(t, []string{"validated", "ns", "a", "1.2.0", "2.12", "ok", "7", "someone, someone else"}, rows[1])
	assert.Equal(t, "missing", rows[2][5])
}

func TestReportXlsxAdapterReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collections.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
	require.NoError(t, NewReportXlsxAdapter(path).Write(sampleReport()))

	workbook, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer workbook.Close()
	rows, err := workbook.GetRows(workbookSheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
