// Package detect implements the incremental change-detection engine.
//
// Each poll cycle delivers a full snapshot of a source table's current
// records. The detector classifies every record as New, Updated, Unchanged,
// or Deleted relative to the last observed state, using content-based
// fingerprinting: the source format carries no reliable modification flag,
// so change is defined as a digest mismatch over the record's non-excluded,
// normalized fields.
//
// # Invariants
//
//   - Idempotence: re-running detection with an unchanged snapshot yields
//     zero New/Updated/Deleted and all records Unchanged.
//   - Field-order invariance: fingerprints do not depend on the order
//     fields appear in the source record.
//   - Deletions are sticky: a key observed absent is tombstoned, not
//     purged, so continued absence is silent; reappearance is New again.
//
// # Failure Semantics
//
// A pass mutates a working copy of the source's state and commits it to
// the store only on full success, so snapshot read failures or persist
// failures leave the prior state untouched and every change is re-detected
// next cycle. Per-record data errors (missing key, non-numeric counter)
// are skipped, never fatal.
package detect
