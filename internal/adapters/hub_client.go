package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"hub-versions/internal/ports"
	"hub-versions/internal/shared"
	"hub-versions/internal/types"
)

const defaultHubPageSize = 100
const defaultHubTimeout = 60 * time.Second
const defaultHubRetries = 3
const defaultHubRetryDelay = 200 * time.Millisecond
const maxHubRetryDelay = 2 * time.Second

// HubClientAdapter talks to the automation hub's galaxy v3 plugin API.
// A single rate-limit gate is shared by all calls: when any request is
// told to back off, every in-flight worker waits it out instead of
// continuing to fire.
type HubClientAdapter struct {
	BaseURL    string
	Token      string
	Username   string
	Password   string
	PageSize   int
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration

	client *http.Client

	mu        sync.Mutex
	notBefore time.Time
}

func NewHubClientAdapter(baseURL string, token string, username string, password string, pageSize int, timeoutSec int, retries int, retryDelayMs int) *HubClientAdapter {
	if pageSize <= 0 {
		pageSize = defaultHubPageSize
	}
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultHubTimeout
	}
	if retries <= 0 {
		retries = defaultHubRetries
	}
	retryDelay := time.Duration(retryDelayMs) * time.Millisecond
	if retryDelay <= 0 {
		retryDelay = defaultHubRetryDelay
	}
	return &HubClientAdapter{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Token:      strings.TrimSpace(token),
		Username:   strings.TrimSpace(username),
		Password:   password,
		PageSize:   pageSize,
		Timeout:    timeout,
		Retries:    retries,
		RetryDelay: retryDelay,
		client:     &http.Client{Timeout: timeout},
	}
}

// contentPath maps a repository to its path segment in the plugin API.
// The certified catalog lives under "published" upstream.
func contentPath(repo types.Repository) string {
	if repo == types.RepositoryCertified {
		return "published"
	}
	return string(repo)
}

type collectionEntry struct {
	Namespace      string `json:"namespace"`
	Name           string `json:"name"`
	DownloadCount  int    `json:"download_count"`
	HighestVersion struct {
		Href    string `json:"href"`
		Version string `json:"version"`
	} `json:"highest_version"`
}

type collectionPage struct {
	Links struct {
		Next *string `json:"next"`
	} `json:"links"`
	Data []collectionEntry `json:"data"`
}

type versionDetail struct {
	Version         string `json:"version"`
	RequiresAnsible string `json:"requires_ansible"`
	Metadata        struct {
		Authors []string `json:"authors"`
	} `json:"metadata"`
}

func (a *HubClientAdapter) Collections(ctx context.Context, repo types.Repository) ports.CollectionIterator {
	first := fmt.Sprintf(
		"/api/automation-hub/v3/plugin/ansible/content/%s/collections/index/?limit=%d",
		contentPath(repo), a.PageSize,
	)
	return &collectionPager{adapter: a, repo: repo, next: first}
}

// collectionPager is a forward-only cursor over the listing endpoint.
// Each page is requested only once the previous one has been consumed.
type collectionPager struct {
	adapter *HubClientAdapter
	repo    types.Repository
	next    string
	buffer  []types.CollectionID
	pos     int
	done    bool
}

func (p *collectionPager) Next(ctx context.Context) (types.CollectionID, bool, error) {
	for p.pos >= len(p.buffer) {
		if p.done || p.next == "" {
			return types.CollectionID{}, true, nil
		}
		if err := p.fetchPage(ctx); err != nil {
			return types.CollectionID{}, false, err
		}
	}
	id := p.buffer[p.pos]
	p.pos++
	return id, false, nil
}

func (p *collectionPager) fetchPage(ctx context.Context) error {
	body, err := p.adapter.getJSON(ctx, p.next)
	if err != nil {
		return err
	}
	var page collectionPage
	if err := json.Unmarshal(body, &page); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode collection listing").
			WithCause(err)
	}
	log.Ctx(ctx).Debug().
		Str("repository", string(p.repo)).
		Int("collections", len(page.Data)).
		Msg("collection page fetched")
	p.buffer = p.buffer[:0]
	p.pos = 0
	for _, entry := range page.Data {
		p.buffer = append(p.buffer, types.CollectionID{
			Namespace: entry.Namespace,
			Name:      entry.Name,
		})
	}
	// An empty page ends the walk even when a next link is present.
	if len(page.Data) == 0 || page.Links.Next == nil || strings.TrimSpace(*page.Links.Next) == "" {
		p.done = true
		p.next = ""
		return nil
	}
	p.next = *page.Links.Next
	return nil
}

func (a *HubClientAdapter) LatestVersion(ctx context.Context, repo types.Repository, id types.CollectionID) (types.VersionDetail, error) {
	location := fmt.Sprintf(
		"/api/automation-hub/v3/plugin/ansible/content/%s/collections/index/%s/%s/",
		contentPath(repo), id.Namespace, id.Name,
	)
	body, err := a.getJSON(ctx, location)
	if err != nil {
		return types.VersionDetail{}, err
	}
	var entry collectionEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return types.VersionDetail{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode collection").
			WithCause(err)
	}
	if strings.TrimSpace(entry.HighestVersion.Href) == "" {
		return types.VersionDetail{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("collection %s has no published versions", id.FQCN()))
	}
	detailBody, err := a.getJSON(ctx, entry.HighestVersion.Href)
	if err != nil {
		return types.VersionDetail{}, err
	}
	var detail versionDetail
	if err := json.Unmarshal(detailBody, &detail); err != nil {
		return types.VersionDetail{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode collection version").
			WithCause(err)
	}
	version := strings.TrimSpace(detail.Version)
	if version == "" {
		version = strings.TrimSpace(entry.HighestVersion.Version)
	}
	return types.VersionDetail{
		Version:         version,
		RequiresAnsible: detail.RequiresAnsible,
		DownloadCount:   entry.DownloadCount,
		Authors:         detail.Metadata.Authors,
	}, nil
}

// getJSON performs a GET with bounded retries. Rate-limit and server
// errors are transient; everything else surfaces immediately.
func (a *HubClientAdapter) getJSON(ctx context.Context, location string) ([]byte, error) {
	url := a.absoluteURL(location)
	var lastErr error
	for attempt := 0; attempt < a.Retries; attempt++ {
		if err := a.waitForGate(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create hub request").
				WithCause(err)
		}
		req.Header.Set("Accept", "application/json")
		a.applyAuth(req)
		resp, err := a.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("hub request canceled").
					WithCause(ctx.Err())
			}
			lastErr = err
			if attempt < a.Retries-1 {
				a.sleep(ctx, a.retryDelay(attempt))
				continue
			}
			break
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			delay := a.retryAfterDelay(resp, attempt)
			a.raiseGate(delay)
			log.Ctx(ctx).Debug().
				Dur("delay", delay).
				Str("url", url).
				Msg("hub rate limit hit, throttling")
			lastErr = shared.HTTPStatusError(resp.StatusCode, url)
			if attempt < a.Retries-1 {
				continue
			}
			break
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = shared.HTTPStatusErrorWithBody(resp.StatusCode, url, string(body))
			if attempt < a.Retries-1 {
				a.sleep(ctx, a.retryDelay(attempt))
				continue
			}
			break
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			code := errbuilder.CodeInternal
			switch resp.StatusCode {
			case http.StatusNotFound:
				code = errbuilder.CodeNotFound
			case http.StatusUnauthorized, http.StatusForbidden:
				code = errbuilder.CodePermissionDenied
			}
			return nil, errbuilder.New().
				WithCode(code).
				WithMsg("hub request failed").
				WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, url, string(body)))
		}
		if readErr != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read hub response").
				WithCause(readErr)
		}
		return body, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("hub request failed")
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("hub request failed after retries").
		WithCause(lastErr)
}

func (a *HubClientAdapter) absoluteURL(location string) string {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return location
	}
	if !strings.HasPrefix(location, "/") {
		location = "/" + location
	}
	return a.BaseURL + location
}

func (a *HubClientAdapter) applyAuth(req *http.Request) {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
		return
	}
	if a.Username != "" {
		req.SetBasicAuth(a.Username, a.Password)
	}
}

// waitForGate blocks until the shared rate-limit gate has passed.
func (a *HubClientAdapter) waitForGate(ctx context.Context) error {
	a.mu.Lock()
	wait := time.Until(a.notBefore)
	a.mu.Unlock()
	if wait <= 0 {
		return nil
	}
	return a.sleep(ctx, wait)
}

func (a *HubClientAdapter) raiseGate(delay time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	candidate := time.Now().Add(delay)
	if candidate.After(a.notBefore) {
		a.notBefore = candidate
	}
}

func (a *HubClientAdapter) sleep(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("hub request canceled").
			WithCause(ctx.Err())
	case <-timer.C:
		return nil
	}
}

// retryAfterDelay honors the server's Retry-After when present,
// otherwise falls back to the regular backoff schedule.
func (a *HubClientAdapter) retryAfterDelay(resp *http.Response, attempt int) time.Duration {
	header := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
		if at, err := http.ParseTime(header); err == nil {
			if wait := time.Until(at); wait > 0 {
				return wait
			}
		}
	}
	return a.retryDelay(attempt)
}

func (a *HubClientAdapter) retryDelay(attempt int) time.Duration {
	delay := a.RetryDelay * time.Duration(1<<attempt)
	if delay > maxHubRetryDelay {
		delay = maxHubRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

var _ ports.HubCatalogPort = (*HubClientAdapter)(nil)
