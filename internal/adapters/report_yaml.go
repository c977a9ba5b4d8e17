package adapters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"hub-versions/internal/ports"
	"hub-versions/internal/types"
)

// ReportYAMLAdapter writes the report as a YAML document, for
// consumption by other tooling.
type ReportYAMLAdapter struct {
	Path string
}

func NewReportYAMLAdapter(path string) ReportYAMLAdapter {
	return ReportYAMLAdapter{Path: path}
}

type yamlReportRow struct {
	Repository     string   `yaml:"repository"`
	Namespace      string   `yaml:"namespace"`
	Name           string   `yaml:"name"`
	LatestVersion  string   `yaml:"latest_version"`
	MinimalAnsible string   `yaml:"minimal_ansible_version,omitempty"`
	RawRequirement string   `yaml:"raw_requirement,omitempty"`
	Status         string   `yaml:"status"`
	Downloads      int      `yaml:"downloads"`
	Authors        []string `yaml:"authors,omitempty"`
}

type yamlReportWarning struct {
	Repository string `yaml:"repository"`
	Message    string `yaml:"message"`
}

type yamlReport struct {
	Rows     []yamlReportRow     `yaml:"rows"`
	Warnings []yamlReportWarning `yaml:"warnings,omitempty"`
}

func (a ReportYAMLAdapter) Write(report types.Report) error {
	path := strings.TrimSpace(a.Path)
	if path == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("report path is empty")
	}
	payload := yamlReport{Rows: make([]yamlReportRow, 0, len(report.Rows))}
	for _, row := range report.Rows {
		out := yamlReportRow{
			Repository:     string(row.Repository),
			Namespace:      row.Namespace,
			Name:           row.Name,
			LatestVersion:  row.LatestVersion,
			RawRequirement: row.RawRequirement,
			Status:         string(row.Status),
			Downloads:      row.DownloadCount,
			Authors:        row.Authors,
		}
		if row.MinimalAnsibleVersion != nil {
			out.MinimalAnsible = row.MinimalAnsibleVersion.String()
		}
		payload.Rows = append(payload.Rows, out)
	}
	for _, warning := range report.Warnings {
		payload.Warnings = append(payload.Warnings, yamlReportWarning{
			Repository: string(warning.Repository),
			Message:    warning.Message,
		})
	}
	data, err := yaml.Marshal(payload)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal report").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create report directory").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write report").
			WithCause(err)
	}
	return nil
}

var _ ports.ReportSinkPort = ReportYAMLAdapter{}
