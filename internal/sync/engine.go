package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"

	"github.com/bricolab/fabsync/internal/utils"
)

var ErrSyncAlreadyRunning = errors.New("sync already running")

// RunResult is the outcome of one full sync pass.
type RunResult struct {
	Summary    *RunSummary
	Synced     int
	Skipped    int
	Failed     int
	Pruned     int
	Downloaded int64 // bytes fetched from the remote
}

// Engine drives one flat-sync flow: list the remote, reconcile against
// the ledger, materialize creates and replaces under targetDir, update
// the ledger after each successful write, prune stale keys at the end.
//
// Single-writer semantics: a file lock next to the target dir rejects
// concurrent runs against the same ledger.
type Engine struct {
	source    Source
	ledger    *Ledger
	targetDir string
	mode      MatchMode
	lock      *flock.Flock
}

func NewEngine(source Source, ledger *Ledger, targetDir string, mode MatchMode) *Engine {
	return &Engine{
		source:    source,
		ledger:    ledger,
		targetDir: targetDir,
		mode:      mode,
		lock:      flock.New(filepath.Join(targetDir, ".fabsync.lock")),
	}
}

// Run performs a full sync pass. Transport errors from the listing abort
// the run; per-item download failures are counted and logged, and the
// ledger keeps its previous entry for those items.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	if err := utils.EnsureDir(e.targetDir); err != nil {
		return nil, fmt.Errorf("ensure target dir: %w", err)
	}

	locked, err := e.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !locked {
		return nil, ErrSyncAlreadyRunning
	}
	defer e.lock.Unlock()

	tStart := time.Now()

	items, err := e.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list remote items: %w", err)
	}

	state, err := e.ledger.State()
	if err != nil {
		return nil, fmt.Errorf("load ledger state: %w", err)
	}

	cs, summary := Reconcile(items, state, e.mode)
	result := &RunResult{Summary: summary}

	remoteKeys := mapset.NewThreadUnsafeSet[string]()
	for _, entry := range cs.Entries {
		remoteKeys.Add(entry.Key)

		switch entry.Kind {
		case ChangeSkip:
			result.Skipped++
			continue
		case ChangeReplace:
			if err := e.removeStale(entry); err != nil {
				slog.Warn("remove stale predecessor", "name", entry.PreviousExactName, "error", err)
			}
		}

		if err := e.materialize(ctx, entry, result); err != nil {
			slog.Error("sync item failed", "name", entry.Item.Name, "error", err)
			result.Failed++
			continue
		}
		result.Synced++
	}

	pruned, err := e.ledger.Prune(remoteKeys)
	if err != nil {
		return result, fmt.Errorf("prune ledger: %w", err)
	}
	result.Pruned = pruned

	slog.Info("sync run",
		"run", summary.RunID,
		"synced", result.Synced,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"pruned", result.Pruned,
		"conflicts", len(summary.KeyConflicts),
		"downloaded", humanize.Bytes(uint64(result.Downloaded)),
		"took", time.Since(tStart),
	)

	return result, nil
}

// materialize downloads one item, writes it under the target dir and
// records the new state in the ledger.
func (e *Engine) materialize(ctx context.Context, entry *ChangeSetEntry, result *RunResult) error {
	item := entry.Item

	data, err := e.source.Download(ctx, item)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	result.Downloaded += int64(len(data))

	dest := filepath.Join(e.targetDir, filepath.FromSlash(item.RelPath()))
	if err := utils.WriteFileAtomic(dest, data); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	// The remote fingerprint is an md5 hex digest; verify the written
	// file against it before recording the item as synced.
	if item.Fingerprint != "" {
		digest, err := utils.FileHash(dest)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		if digest != item.Fingerprint {
			return fmt.Errorf("fingerprint mismatch for %s: got %s, remote lists %s", item.Name, digest, item.Fingerprint)
		}
	}

	if err := e.ledger.Set(&TrackedItem{
		Key:          entry.Key,
		ExactName:    item.Name,
		Folder:       item.Folder(),
		Fingerprint:  item.Fingerprint,
		LastSyncedAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("update ledger: %w", err)
	}

	slog.Debug("synced", "kind", entry.Kind, "path", item.RelPath(), "size", humanize.Bytes(uint64(len(data))))
	return nil
}

// removeStale deletes the differently-named predecessor of a replaced
// item. A missing file is not an error; the ledger row is overwritten by
// the subsequent Set either way.
func (e *Engine) removeStale(entry *ChangeSetEntry) error {
	if entry.PreviousExactName == "" || entry.PreviousExactName == entry.Item.Name {
		return nil
	}

	stale := filepath.Join(e.targetDir, filepath.FromSlash(entry.PreviousFolder), entry.PreviousExactName)
	if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
		return err
	}
	slog.Info("replaced predecessor", "old", entry.PreviousExactName, "new", entry.Item.Name)
	return nil
}
