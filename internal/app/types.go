package app

import "hub-versions/internal/types"

type ReportFormat string

const (
	ReportFormatTable ReportFormat = "table"
	ReportFormatYAML  ReportFormat = "yaml"
	ReportFormatXlsx  ReportFormat = "xlsx"
)

type GatherRequest struct {
	APIURL           string
	Token            string
	Username         string
	Password         string
	Repositories     []string
	PageSize         int
	Workers          int
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
	Format           string
	OutputPath       string
}

type GatherResult struct {
	Repositories []types.Repository
	RowCount     int
	Warnings     []types.RunWarning
	OutputPath   string
}
