package detect

import "esl-middleware/core/record"

// ChangeType classifies a record relative to the last observed state.
type ChangeType string

const (
	ChangeNew       ChangeType = "NEW"
	ChangeUpdated   ChangeType = "UPDATED"
	ChangeDeleted   ChangeType = "DELETED"
	ChangeUnchanged ChangeType = "UNCHANGED"
)

// Change is a single classified record within a ChangeSet.
type Change struct {
	// Type is the classification.
	Type ChangeType `json:"type"`

	// Key is the record's identity within its source.
	Key string `json:"key"`

	// Record is the current record. Nil for deletions, which carry no
	// current record by definition.
	Record *record.Record `json:"-"`

	// OldChecksum is the previously stored fingerprint. Set for Updated
	// and Deleted entries.
	OldChecksum string `json:"old_checksum,omitempty"`

	// NewChecksum is the fingerprint computed this pass. Set for New,
	// Updated, and Unchanged entries.
	NewChecksum string `json:"new_checksum,omitempty"`
}

// ChangeSet is the classified output of one detection pass for one source:
// four disjoint lists covering every usable record of the current snapshot
// plus every tracked key that vanished from it.
type ChangeSet struct {
	Source    string   `json:"source"`
	New       []Change `json:"new"`
	Updated   []Change `json:"updated"`
	Deleted   []Change `json:"deleted"`
	Unchanged []Change `json:"unchanged"`

	// Skipped counts snapshot records dropped for missing a usable key.
	Skipped int `json:"skipped"`
}

// HasChanges reports whether the pass produced anything to synchronize.
func (cs *ChangeSet) HasChanges() bool {
	return len(cs.New) > 0 || len(cs.Updated) > 0 || len(cs.Deleted) > 0
}

// SyncRecords returns the records that need synchronization downstream:
// new and updated, in that order. Deletions carry no record and are left
// to the consumer's own delete semantics.
func (cs *ChangeSet) SyncRecords() []*record.Record {
	out := make([]*record.Record, 0, len(cs.New)+len(cs.Updated))
	for _, c := range cs.New {
		out = append(out, c.Record)
	}
	for _, c := range cs.Updated {
		out = append(out, c.Record)
	}
	return out
}
