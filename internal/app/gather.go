package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"hub-versions/internal/adapters"
	"hub-versions/internal/core"
	"hub-versions/internal/ports"
	"hub-versions/internal/types"
)

const defaultResolveWorkers = 4

// Gather walks every requested content repository, resolves the latest
// published version of each collection, normalizes its engine
// requirement, and hands the merged report to the configured sink.
// Each repository is an isolated failure domain: a dead pagination walk
// surfaces as a run warning plus whatever rows it produced, never as a
// run-level error.
func (s Service) Gather(ctx context.Context, req GatherRequest) (GatherResult, error) {
	if strings.TrimSpace(req.APIURL) == "" {
		return GatherResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("api url is required")
	}
	repos, err := resolveRepositories(req.Repositories)
	if err != nil {
		return GatherResult{}, err
	}
	sink, err := s.resolveSink(req)
	if err != nil {
		return GatherResult{}, err
	}
	hub := s.Hub
	if hub == nil {
		hub = adapters.NewHubClientAdapter(
			req.APIURL,
			req.Token,
			req.Username,
			req.Password,
			req.PageSize,
			req.HTTPTimeoutSec,
			req.HTTPRetries,
			req.HTTPRetryDelayMs,
		)
	}
	workers := req.Workers
	if workers <= 0 {
		workers = defaultResolveWorkers
	}
	started := s.Clock()

	type repoOutcome struct {
		rows     []types.ResultRow
		warnings []types.RunWarning
	}
	outcomes := make([]repoOutcome, len(repos))
	var wg sync.WaitGroup
	for i, repo := range repos {
		wg.Add(1)
		go func(i int, repo types.Repository) {
			defer wg.Done()
			rows, warnings := s.walkRepository(ctx, hub, repo, workers)
			outcomes[i] = repoOutcome{rows: rows, warnings: warnings}
		}(i, repo)
	}
	wg.Wait()

	report := types.Report{}
	for _, outcome := range outcomes {
		report.Rows = append(report.Rows, outcome.rows...)
		report.Warnings = append(report.Warnings, outcome.warnings...)
	}
	for _, warning := range report.Warnings {
		log.Ctx(ctx).Warn().
			Str("repository", string(warning.Repository)).
			Msg(warning.Message)
	}
	if err := sink.Write(report); err != nil {
		return GatherResult{}, err
	}
	log.Ctx(ctx).Info().
		Int("rows", len(report.Rows)).
		Int("warnings", len(report.Warnings)).
		Dur("elapsed", s.Clock().Sub(started)).
		Msg("report written")
	return GatherResult{
		Repositories: repos,
		RowCount:     len(report.Rows),
		Warnings:     report.Warnings,
		OutputPath:   req.OutputPath,
	}, nil
}

func resolveRepositories(names []string) ([]types.Repository, error) {
	if len(names) == 0 {
		return append([]types.Repository(nil), types.AllRepositories...), nil
	}
	repos := make([]types.Repository, 0, len(names))
	seen := map[types.Repository]struct{}{}
	for _, name := range names {
		repo := types.Repository(strings.ToLower(strings.TrimSpace(name)))
		if repo != types.RepositoryValidated && repo != types.RepositoryCertified {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unknown repository: %s", name))
		}
		if _, ok := seen[repo]; ok {
			continue
		}
		seen[repo] = struct{}{}
		repos = append(repos, repo)
	}
	return repos, nil
}

func (s Service) resolveSink(req GatherRequest) (ports.ReportSinkPort, error) {
	if s.Sink != nil {
		return s.Sink, nil
	}
	format := ReportFormat(strings.ToLower(strings.TrimSpace(req.Format)))
	if format == "" {
		format = ReportFormatTable
	}
	switch format {
	case ReportFormatTable:
		return adapters.NewReportConsoleAdapter(), nil
	case ReportFormatYAML, ReportFormatXlsx:
		if strings.TrimSpace(req.OutputPath) == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("output path is required for %s reports", format))
		}
		if format == ReportFormatYAML {
			return adapters.NewReportYAMLAdapter(req.OutputPath), nil
		}
		return adapters.NewReportXlsxAdapter(req.OutputPath), nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown report format: %s", req.Format))
	}
}

type resolveTask struct {
	index int
	id    types.CollectionID
}

type resolveOutcome struct {
	index int
	row   types.ResultRow
}

type walkOutcome struct {
	total    int
	warnings []types.RunWarning
}

// walkRepository drains the paginated listing while a bounded worker
// pool resolves the collections already discovered. Rows come back in
// discovery order regardless of which worker finished first.
func (s Service) walkRepository(ctx context.Context, hub ports.HubCatalogPort, repo types.Repository, workers int) ([]types.ResultRow, []types.RunWarning) {
	assert.NotEmpty(ctx, string(repo), "repository must be set")
	tasks := make(chan resolveTask)
	results := make(chan resolveOutcome)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				results <- resolveOutcome{
					index: task.index,
					row:   s.resolveCollection(ctx, hub, repo, task.id),
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	producerDone := make(chan walkOutcome, 1)
	go func() {
		var outcome walkOutcome
		seen := map[types.CollectionID]struct{}{}
		iterator := hub.Collections(ctx, repo)
		for {
			id, done, err := iterator.Next(ctx)
			if err != nil {
				outcome.warnings = append(outcome.warnings, types.RunWarning{
					Repository: repo,
					Message:    fmt.Sprintf("pagination aborted, report is partial: %v", err),
				})
				break
			}
			if done {
				break
			}
			if _, duplicate := seen[id]; duplicate {
				outcome.warnings = append(outcome.warnings, types.RunWarning{
					Repository: repo,
					Message:    fmt.Sprintf("duplicate collection %s returned by listing", id.FQCN()),
				})
			} else {
				seen[id] = struct{}{}
			}
			tasks <- resolveTask{index: outcome.total, id: id}
			outcome.total++
		}
		close(tasks)
		producerDone <- outcome
	}()

	rowsByIndex := map[int]types.ResultRow{}
	for result := range results {
		rowsByIndex[result.index] = result.row
	}
	outcome := <-producerDone
	rows := make([]types.ResultRow, 0, outcome.total)
	for i := 0; i < outcome.total; i++ {
		rows = append(rows, rowsByIndex[i])
	}
	log.Ctx(ctx).Debug().
		Str("repository", string(repo)).
		Int("collections", len(rows)).
		Msg("repository walk completed")
	return rows, outcome.warnings
}

// resolveCollection produces exactly one row per identifier. Failures
// are folded into the row status; nothing escapes the walker.
func (s Service) resolveCollection(ctx context.Context, hub ports.HubCatalogPort, repo types.Repository, id types.CollectionID) types.ResultRow {
	row := types.ResultRow{
		Repository: repo,
		Namespace:  id.Namespace,
		Name:       id.Name,
	}
	detail, err := hub.LatestVersion(ctx, repo, id)
	if err != nil {
		log.Ctx(ctx).Warn().
			Str("collection", id.FQCN()).
			Err(err).
			Msg("failed to resolve latest version")
		row.Status = types.RowStatusMissing
		return row
	}
	row.LatestVersion = detail.Version
	row.RawRequirement = detail.RequiresAnsible
	row.DownloadCount = detail.DownloadCount
	row.Authors = detail.Authors
	minimal, status := core.NormalizeMinimal(detail.RequiresAnsible)
	row.MinimalAnsibleVersion = minimal
	row.Status = status
	log.Ctx(ctx).Debug().
		Str("collection", id.FQCN()).
		Str("latest", detail.Version).
		Str("minimal", row.MinimalVersionString()).
		Str("status", string(status)).
		Msg("collection resolved")
	return row
}
