package sync

import (
	"context"
)

// Source is the remote capability the sync engine is driven by. Errors
// from either call are transport failures: they are surfaced unmodified
// and never retried here.
type Source interface {
	// List returns every remote item under the configured location.
	List(ctx context.Context) ([]*RemoteItem, error)
	// Download fetches the content of one item.
	Download(ctx context.Context, item *RemoteItem) ([]byte, error)
}
