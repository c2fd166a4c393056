package state

import "time"

// RecordState is the persisted tracking entry for a single (source, key)
// pair. Entries are never purged: once a key disappears from a snapshot the
// entry stays with Deleted=true so repeated absence does not re-trigger a
// delete event.
type RecordState struct {
	// RecordID is the record key, unique within its source.
	RecordID string `json:"record_id"`

	// Checksum is the content fingerprint of the record's non-excluded
	// fields as of the last cycle in which the record was present.
	Checksum string `json:"checksum"`

	// LastSeen is the time of the last cycle in which this key was
	// observed present.
	LastSeen time.Time `json:"last_seen"`

	// DocNo is the record's document number, when the source tracks one.
	DocNo *int64 `json:"doc_no"`

	// Deleted is set once the key has been observed absent after
	// previously being present.
	Deleted bool `json:"deleted"`
}

// Clone returns a deep copy of the record state.
func (r *RecordState) Clone() *RecordState {
	out := *r
	if r.DocNo != nil {
		n := *r.DocNo
		out.DocNo = &n
	}
	return &out
}

// SourceState is the per-source tracking state: one RecordState per key,
// plus the last processed time and the running maximum document number.
type SourceState struct {
	// LastProcessed is the completion time of the last detection pass.
	LastProcessed time.Time `json:"last_processed"`

	// LastDocNo is the running maximum of the tracked secondary counter
	// across all cycles, used for transaction ordering.
	LastDocNo int64 `json:"last_secondary_counter"`

	// Records maps record key to its tracking entry.
	Records map[string]*RecordState `json:"records"`
}

// NewSourceState returns an empty source state.
func NewSourceState() *SourceState {
	return &SourceState{Records: make(map[string]*RecordState)}
}

// Clone returns a deep copy. The detector mutates a clone and commits it
// back only when a pass fully succeeds, so a failed pass never leaves the
// store half-updated.
func (s *SourceState) Clone() *SourceState {
	out := &SourceState{
		LastProcessed: s.LastProcessed,
		LastDocNo:     s.LastDocNo,
		Records:       make(map[string]*RecordState, len(s.Records)),
	}
	for k, v := range s.Records {
		out.Records[k] = v.Clone()
	}
	return out
}

// SourceInfo is a read-only summary of one source's tracking state,
// exposed on the status API.
type SourceInfo struct {
	// LastProcessed is the completion time of the last detection pass.
	LastProcessed time.Time `json:"last_processed"`

	// LastDocNo is the running maximum document number.
	LastDocNo int64 `json:"last_secondary_counter"`

	// TrackedRecords counts entries currently present in the source.
	TrackedRecords int `json:"tracked_records"`

	// DeletedRecords counts entries retained as tombstones.
	DeletedRecords int `json:"deleted_records"`
}
