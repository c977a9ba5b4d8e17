package ports

import "hub-versions/internal/types"

// ReportSinkPort receives the finished report. Exactly one sink is
// wired per run; sinks never mutate the report.
type ReportSinkPort interface {
	Write(report types.Report) error
}
