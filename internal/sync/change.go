package sync

// ChangeKind classifies what a remote item needs.
type ChangeKind string

const (
	ChangeCreate  ChangeKind = "Create"
	ChangeReplace ChangeKind = "Replace"
	ChangeSkip    ChangeKind = "Skip"
)

// ChangeSetEntry is the reconciliation decision for a single remote item.
// Every remote item maps to exactly one entry.
type ChangeSetEntry struct {
	Kind ChangeKind
	Item *RemoteItem
	Key  string

	// Previous* identify the stale predecessor to remove before writing.
	// Set only for Replace.
	PreviousExactName string
	PreviousFolder    string
}

// ChangeSet is the ordered result of a reconciliation pass. Entries
// preserve remote listing order.
type ChangeSet struct {
	Entries []*ChangeSetEntry
}

func (cs *ChangeSet) count(kind ChangeKind) int {
	n := 0
	for _, e := range cs.Entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (cs *ChangeSet) Creates() int  { return cs.count(ChangeCreate) }
func (cs *ChangeSet) Replaces() int { return cs.count(ChangeReplace) }
func (cs *ChangeSet) Skips() int    { return cs.count(ChangeSkip) }

func (cs *ChangeSet) HasChanges() bool {
	return cs.Creates() > 0 || cs.Replaces() > 0
}
