package detect

import (
	"fmt"
	"sort"
	"time"

	"esl-middleware/core/record"
	"esl-middleware/core/state"
	"esl-middleware/core/utils"

	"go.uber.org/zap"
)

// DefaultSecondaryField is the document-number field tracked as a running
// maximum for transaction sources when Options.SecondaryField is unset.
const DefaultSecondaryField = "DOC_NO"

// Options controls one detection pass.
type Options struct {
	// KeyField names the field holding the record's identity
	// (e.g. PART_NO for stock, DOC_NO for transactions). Required.
	KeyField string

	// TrackSecondary enables running-maximum tracking of a numeric
	// secondary counter extracted from each record.
	TrackSecondary bool

	// SecondaryField names the counter field. Defaults to DOC_NO.
	SecondaryField string
}

// Detector classifies a full current snapshot of a source against the
// last observed state, producing a ChangeSet and updating the store.
//
// Detection is content-based: the source table format has no reliable
// dirty-bit, so change is defined as a fingerprint mismatch over the
// record's non-excluded fields.
type Detector struct {
	store    *state.Store
	excluded []string
	logger   *zap.Logger
	now      func() time.Time
}

// NewDetector creates a detector over the given store. Fields named in
// excluded are omitted from fingerprints (volatile columns such as
// timestamps).
func NewDetector(store *state.Store, excluded []string, logger *zap.Logger) *Detector {
	return &Detector{
		store:    store,
		excluded: excluded,
		logger:   logger,
		now:      time.Now,
	}
}

// Detect runs one detection pass for a source. On success the store holds
// the updated SourceState and has been persisted. On failure the store is
// left exactly as it was: the pass mutates a working copy and commits only
// at the end, so state updates are all-or-nothing.
//
// Classification rules:
//   - key absent from prior state, or present only as a deleted tombstone:
//     New. A reappearing key is unconditionally New: the stale pre-deletion
//     fingerprint is discarded, never compared, so a re-added item always
//     triggers a fresh sync downstream.
//   - fingerprint differs from stored: Updated.
//   - fingerprint equal: Unchanged (LastSeen refreshed).
//   - tracked keys missing from the snapshot and not already deleted:
//     Deleted; the entry is kept with Deleted=true so repeated absence does
//     not re-trigger delete events.
//
// Records without a usable key are skipped and counted, never fatal.
func (d *Detector) Detect(sourceID string, records []*record.Record, opts Options) (*ChangeSet, error) {
	if opts.KeyField == "" {
		return nil, fmt.Errorf("detect %s: key field is required", sourceID)
	}
	if opts.SecondaryField == "" {
		opts.SecondaryField = DefaultSecondaryField
	}

	prior := d.store.SourceState(sourceID)
	work := prior.Clone()
	now := d.now()

	cs := &ChangeSet{Source: sourceID}
	seen := make(map[string]struct{}, len(records))

	for _, rec := range records {
		key := rec.GetString(opts.KeyField)
		if key == "" {
			cs.Skipped++
			d.logger.Debug("Record missing key field, skipping",
				zap.String("source", sourceID), zap.String("key_field", opts.KeyField))
			continue
		}
		seen[key] = struct{}{}

		var docNo *int64
		if v, ok := rec.Get(opts.SecondaryField); ok {
			if n, numeric := utils.ToInt64(v); numeric {
				docNo = &n
				if opts.TrackSecondary && n > work.LastDocNo {
					work.LastDocNo = n
				}
			}
		}

		fp := Fingerprint(rec, d.excluded)
		prev, tracked := work.Records[key]

		switch {
		case !tracked || prev.Deleted:
			cs.New = append(cs.New, Change{Type: ChangeNew, Key: key, Record: rec, NewChecksum: fp})
			work.Records[key] = &state.RecordState{
				RecordID: key,
				Checksum: fp,
				LastSeen: now,
				DocNo:    docNo,
			}
		case prev.Checksum != fp:
			cs.Updated = append(cs.Updated, Change{
				Type:        ChangeUpdated,
				Key:         key,
				Record:      rec,
				OldChecksum: prev.Checksum,
				NewChecksum: fp,
			})
			prev.Checksum = fp
			prev.LastSeen = now
			prev.DocNo = docNo
		default:
			cs.Unchanged = append(cs.Unchanged, Change{Type: ChangeUnchanged, Key: key, Record: rec, NewChecksum: fp})
			prev.LastSeen = now
		}
	}

	for key, rs := range work.Records {
		if _, present := seen[key]; present || rs.Deleted {
			continue
		}
		rs.Deleted = true
		cs.Deleted = append(cs.Deleted, Change{Type: ChangeDeleted, Key: key, OldChecksum: rs.Checksum})
	}
	sort.Slice(cs.Deleted, func(i, j int) bool { return cs.Deleted[i].Key < cs.Deleted[j].Key })

	work.LastProcessed = now
	d.store.Commit(sourceID, work)

	if err := d.store.Save(); err != nil {
		// Roll the commit back so a failed persist leaves the next cycle
		// comparing against the last durable state.
		d.store.Commit(sourceID, prior)
		return nil, fmt.Errorf("persist state for %s: %w", sourceID, err)
	}

	d.logger.Info("Change detection complete",
		zap.String("source", sourceID),
		zap.Int("new", len(cs.New)),
		zap.Int("updated", len(cs.Updated)),
		zap.Int("deleted", len(cs.Deleted)),
		zap.Int("unchanged", len(cs.Unchanged)),
		zap.Int("skipped", cs.Skipped),
		zap.Int64("last_doc_no", work.LastDocNo))

	return cs, nil
}
