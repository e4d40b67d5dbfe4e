package sync

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// MatchMode selects how remote items are matched against ledger entries.
type MatchMode string

const (
	// MatchExact keys items by their full name.
	MatchExact MatchMode = "exact"
	// MatchPrefix keys items by their derived partial key, so a renamed
	// file replaces its differently-named predecessor.
	MatchPrefix MatchMode = "prefix"
)

// KeyConflict records two remote items in the same listing collapsing to
// one partial key. The later item wins; both are still processed.
type KeyConflict struct {
	Key         string
	EarlierName string
	LaterName   string
}

// RunSummary collects every condition recovered during a reconciliation
// pass. Nothing is dropped silently; the caller decides what a warning
// means for exit status.
type RunSummary struct {
	RunID        string
	InvalidNames []string
	KeyConflicts []KeyConflict
}

func (s *RunSummary) HasWarnings() bool {
	return len(s.InvalidNames) > 0 || len(s.KeyConflicts) > 0
}

// Reconcile partitions remote items into Create/Replace/Skip decisions
// against the ledger state. It is pure: the ledger is only read, and the
// caller applies updates after each successful materialization.
//
// Under MatchPrefix, items too short for key derivation fall back to
// exact-name matching and are reported in the summary; they can never
// replace a differently-named predecessor.
func Reconcile(items []*RemoteItem, ledger map[string]*TrackedItem, mode MatchMode) (*ChangeSet, *RunSummary) {
	cs := &ChangeSet{Entries: make([]*ChangeSetEntry, 0, len(items))}
	summary := &RunSummary{RunID: uuid.NewString()}

	seen := make(map[string]string, len(items))

	for _, item := range items {
		key := item.Name
		if mode == MatchPrefix {
			derived, err := DeriveKey(item.Name)
			if err != nil {
				if errors.Is(err, ErrNameTooShort) {
					slog.Warn("name too short for prefix matching, falling back to exact", "name", item.Name)
					summary.InvalidNames = append(summary.InvalidNames, item.Name)
				}
			} else {
				key = derived
			}
		}

		if earlier, ok := seen[key]; ok {
			// ambiguous match: last write wins, ledger keeps one entry per key
			slog.Warn("ambiguous key collision", "key", key, "earlier", earlier, "later", item.Name)
			summary.KeyConflicts = append(summary.KeyConflicts, KeyConflict{
				Key:         key,
				EarlierName: earlier,
				LaterName:   item.Name,
			})
		}
		seen[key] = item.Name

		entry := &ChangeSetEntry{Item: item, Key: key}
		tracked := ledger[key]

		switch {
		case tracked == nil:
			entry.Kind = ChangeCreate
		case tracked.Fingerprint == item.Fingerprint && (mode != MatchPrefix || tracked.ExactName == item.Name):
			entry.Kind = ChangeSkip
		default:
			// changed content, or a renamed file superseding its predecessor
			entry.Kind = ChangeReplace
			entry.PreviousExactName = tracked.ExactName
			entry.PreviousFolder = tracked.Folder
		}

		cs.Entries = append(cs.Entries, entry)
	}

	return cs, summary
}
