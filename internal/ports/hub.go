package ports

import (
	"context"

	"hub-versions/internal/types"
)

// CollectionIterator yields collection identifiers one page at a time.
// Next fetches the following page only once the current one is drained;
// done is true after the last identifier has been returned.
type CollectionIterator interface {
	Next(ctx context.Context) (id types.CollectionID, done bool, err error)
}

type HubCatalogPort interface {
	// Collections starts a fresh paginated walk over one repository.
	Collections(ctx context.Context, repo types.Repository) CollectionIterator
	// LatestVersion resolves the most recently published version of a
	// collection together with its declared engine requirement.
	LatestVersion(ctx context.Context, repo types.Repository, id types.CollectionID) (types.VersionDetail, error)
}
