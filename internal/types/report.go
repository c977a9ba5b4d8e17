package types

import (
	"fmt"
	"strings"
)

// CollectionID identifies a collection within one content repository.
type CollectionID struct {
	Namespace string
	Name      string
}

func (id CollectionID) FQCN() string {
	return id.Namespace + "." + id.Name
}

// Clause is one operator/version pair from a requires_ansible string.
type Clause struct {
	Op      ConstraintOp
	Version string
}

// VersionDetail describes a collection's latest published version as
// returned by the hub.
type VersionDetail struct {
	Version         string
	RequiresAnsible string
	DownloadCount   int
	Authors         []string
}

// MinimalVersion is the lowest Ansible Core version satisfying a
// collection's declared requirement. Patch is only meaningful when
// HasPatch is set; requires_ansible bounds usually stop at the minor.
type MinimalVersion struct {
	Major    int
	Minor    int
	Patch    int
	HasPatch bool
}

func (v MinimalVersion) String() string {
	if v.HasPatch {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ResultRow is the per-collection unit of output. RawRequirement keeps
// the unparsed requires_ansible string for diagnostics; it is the only
// place a parse_error row retains what the hub returned.
type ResultRow struct {
	Repository            Repository
	Namespace             string
	Name                  string
	LatestVersion         string
	MinimalAnsibleVersion *MinimalVersion
	RawRequirement        string
	Status                RowStatus
	DownloadCount         int
	Authors               []string
}

// MinimalVersionString renders the normalized version or a dash for
// rows without one.
func (r ResultRow) MinimalVersionString() string {
	if r.MinimalAnsibleVersion == nil {
		return "—"
	}
	return r.MinimalAnsibleVersion.String()
}

func (r ResultRow) AuthorsString() string {
	return strings.Join(r.Authors, ", ")
}

// RunWarning records a non-fatal anomaly surfaced alongside the report:
// a repository whose pagination died after retries, or a duplicate
// identifier within one repository.
type RunWarning struct {
	Repository Repository
	Message    string
}

// Report is the aggregated output of one run. Rows keep API discovery
// order within a repository; repositories appear in AllRepositories
// order regardless of walk completion order.
type Report struct {
	Rows     []ResultRow
	Warnings []RunWarning
}
