package sync

import (
	"path"
	"time"
)

// RemoteItem is a file as reported by the remote listing capability.
type RemoteItem struct {
	ID          string    // remote identifier, used for downloads
	Name        string    // exact file name
	Fingerprint string    // content checksum served by the source
	Size        int64
	Path        []string  // folder hierarchy, outermost first
	ModifiedAt  time.Time
}

// RelPath returns the folder-relative path of the item, slash-separated.
func (r *RemoteItem) RelPath() string {
	if len(r.Path) == 0 {
		return r.Name
	}
	return path.Join(append(append([]string{}, r.Path...), r.Name)...)
}

// Folder returns the slash-joined folder portion of the item's path.
func (r *RemoteItem) Folder() string {
	return path.Join(r.Path...)
}

// TrackedItem is a ledger entry: the last-known state of one logical item,
// keyed by its derived partial key. At most one entry exists per key.
type TrackedItem struct {
	Key          string
	ExactName    string
	Folder       string
	Fingerprint  string
	LastSyncedAt time.Time
}
