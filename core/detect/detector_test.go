package detect

import (
	"path/filepath"
	"testing"
	"time"

	"esl-middleware/core/record"
	"esl-middleware/core/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDetector(t *testing.T) (*Detector, *state.Store) {
	t.Helper()
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"), zap.NewNop())
	store.Load()
	d := NewDetector(store, []string{"TIMESTAMP", "MODIFIED"}, zap.NewNop())
	return d, store
}

func stockOpts() Options {
	return Options{KeyField: "PART_NO"}
}

func TestDetect_FirstCycleAllNew(t *testing.T) {
	d, _ := newTestDetector(t)

	records := []*record.Record{
		record.FromPairs("PART_NO", "A", "PRICE", "10.00"),
		record.FromPairs("PART_NO", "B", "PRICE", "5.00"),
	}

	cs, err := d.Detect("STOCK.DBF", records, stockOpts())
	require.NoError(t, err)

	assert.Len(t, cs.New, 2)
	assert.Empty(t, cs.Updated)
	assert.Empty(t, cs.Deleted)
	assert.Empty(t, cs.Unchanged)
}

func TestDetect_Idempotence(t *testing.T) {
	d, _ := newTestDetector(t)

	records := []*record.Record{
		record.FromPairs("PART_NO", "A", "PRICE", "10.00"),
	}

	_, err := d.Detect("STOCK.DBF", records, stockOpts())
	require.NoError(t, err)

	cs, err := d.Detect("STOCK.DBF", records, stockOpts())
	require.NoError(t, err)

	assert.Empty(t, cs.New)
	assert.Empty(t, cs.Updated)
	assert.Empty(t, cs.Deleted)
	require.Len(t, cs.Unchanged, 1)
	assert.Equal(t, "A", cs.Unchanged[0].Key)
}

func TestDetect_IdempotenceEmptySnapshot(t *testing.T) {
	d, _ := newTestDetector(t)

	cs, err := d.Detect("STOCK.DBF", nil, stockOpts())
	require.NoError(t, err)
	assert.False(t, cs.HasChanges())

	cs, err = d.Detect("STOCK.DBF", nil, stockOpts())
	require.NoError(t, err)
	assert.False(t, cs.HasChanges())
}

func TestDetect_UpdateOnValueChange(t *testing.T) {
	d, _ := newTestDetector(t)

	_, err := d.Detect("STOCK.DBF", []*record.Record{
		record.FromPairs("PART_NO", "A", "PRICE", "10.00"),
	}, stockOpts())
	require.NoError(t, err)

	cs, err := d.Detect("STOCK.DBF", []*record.Record{
		record.FromPairs("PART_NO", "A", "PRICE", "12.00"),
	}, stockOpts())
	require.NoError(t, err)

	require.Len(t, cs.Updated, 1)
	assert.Equal(t, "A", cs.Updated[0].Key)
	assert.NotEmpty(t, cs.Updated[0].OldChecksum)
	assert.NotEmpty(t, cs.Updated[0].NewChecksum)
	assert.NotEqual(t, cs.Updated[0].OldChecksum, cs.Updated[0].NewChecksum)
}

// The canonical lifecycle: New at cycle 1, Unchanged at 2, Updated at 3,
// Deleted at 4, New again at 5.
func TestDetect_Lifecycle(t *testing.T) {
	d, _ := newTestDetector(t)
	src := "STOCK.DBF"

	cs, err := d.Detect(src, []*record.Record{record.FromPairs("PART_NO", "A", "PRICE", "10.00")}, stockOpts())
	require.NoError(t, err)
	require.Len(t, cs.New, 1)

	cs, err = d.Detect(src, []*record.Record{record.FromPairs("PART_NO", "A", "PRICE", "10.00")}, stockOpts())
	require.NoError(t, err)
	assert.Empty(t, cs.New)
	assert.Empty(t, cs.Updated)
	require.Len(t, cs.Unchanged, 1)

	cs, err = d.Detect(src, []*record.Record{record.FromPairs("PART_NO", "A", "PRICE", "12.00")}, stockOpts())
	require.NoError(t, err)
	require.Len(t, cs.Updated, 1)

	cs, err = d.Detect(src, nil, stockOpts())
	require.NoError(t, err)
	require.Len(t, cs.Deleted, 1)
	assert.Equal(t, "A", cs.Deleted[0].Key)

	cs, err = d.Detect(src, []*record.Record{record.FromPairs("PART_NO", "A", "PRICE", "12.00")}, stockOpts())
	require.NoError(t, err)
	require.Len(t, cs.New, 1, "reappearing key must be New, not Updated or Unchanged")
	assert.Empty(t, cs.Updated)
	assert.Empty(t, cs.Unchanged)
}

func TestDetect_RepeatedAbsenceIsSilent(t *testing.T) {
	d, _ := newTestDetector(t)
	src := "STOCK.DBF"

	_, err := d.Detect(src, []*record.Record{record.FromPairs("PART_NO", "A")}, stockOpts())
	require.NoError(t, err)

	cs, err := d.Detect(src, nil, stockOpts())
	require.NoError(t, err)
	require.Len(t, cs.Deleted, 1)

	cs, err = d.Detect(src, nil, stockOpts())
	require.NoError(t, err)
	assert.Empty(t, cs.Deleted, "tombstoned key must not re-trigger a delete event")
}

// Reappearance is unconditionally New even when the record's content still
// matches the fingerprint stored before deletion.
func TestDetect_ReappearanceIgnoresStaleFingerprint(t *testing.T) {
	d, store := newTestDetector(t)
	src := "STOCK.DBF"
	rec := record.FromPairs("PART_NO", "A", "PRICE", "10.00")

	_, err := d.Detect(src, []*record.Record{rec}, stockOpts())
	require.NoError(t, err)
	staleChecksum := store.SourceState(src).Records["A"].Checksum

	_, err = d.Detect(src, nil, stockOpts())
	require.NoError(t, err)

	cs, err := d.Detect(src, []*record.Record{rec}, stockOpts())
	require.NoError(t, err)
	require.Len(t, cs.New, 1)
	assert.Equal(t, staleChecksum, cs.New[0].NewChecksum, "content is identical, yet the record is still New")
	assert.False(t, store.SourceState(src).Records["A"].Deleted)
}

func TestDetect_MissingKeySkipped(t *testing.T) {
	d, _ := newTestDetector(t)

	cs, err := d.Detect("STOCK.DBF", []*record.Record{
		record.FromPairs("PART_NO", "", "PRICE", "10.00"),
		record.FromPairs("PRICE", "5.00"),
		record.FromPairs("PART_NO", "  ", "PRICE", "1.00"),
		record.FromPairs("PART_NO", "A"),
	}, stockOpts())
	require.NoError(t, err)

	assert.Equal(t, 3, cs.Skipped)
	require.Len(t, cs.New, 1)
	assert.Equal(t, "A", cs.New[0].Key)
}

func TestDetect_ExcludedFieldChangeStaysUnchanged(t *testing.T) {
	d, _ := newTestDetector(t)
	src := "STOCK.DBF"

	_, err := d.Detect(src, []*record.Record{
		record.FromPairs("PART_NO", "A", "PRICE", "10.00", "TIMESTAMP", "2026-01-01"),
	}, stockOpts())
	require.NoError(t, err)

	cs, err := d.Detect(src, []*record.Record{
		record.FromPairs("PART_NO", "A", "PRICE", "10.00", "TIMESTAMP", "2026-06-30"),
	}, stockOpts())
	require.NoError(t, err)

	assert.Empty(t, cs.Updated)
	require.Len(t, cs.Unchanged, 1)
}

func TestDetect_WhitespaceDifferenceStaysUnchanged(t *testing.T) {
	d, _ := newTestDetector(t)
	src := "STOCK.DBF"

	_, err := d.Detect(src, []*record.Record{
		record.FromPairs("PART_NO", "A", "DESC", "widget"),
	}, stockOpts())
	require.NoError(t, err)

	cs, err := d.Detect(src, []*record.Record{
		record.FromPairs("PART_NO", "A", "DESC", "  widget  "),
	}, stockOpts())
	require.NoError(t, err)

	assert.Empty(t, cs.Updated)
	require.Len(t, cs.Unchanged, 1)
}

func TestDetect_SecondaryCounterRunningMax(t *testing.T) {
	d, store := newTestDetector(t)
	src := "INVOICE.DBF"
	opts := Options{KeyField: "DOC_NO", TrackSecondary: true}

	_, err := d.Detect(src, []*record.Record{
		record.FromPairs("DOC_NO", "1001", "TOTAL", "5.00"),
		record.FromPairs("DOC_NO", "1005", "TOTAL", "7.00"),
		record.FromPairs("DOC_NO", "bad-number", "TOTAL", "1.00"),
	}, opts)
	require.NoError(t, err)
	assert.Equal(t, int64(1005), store.SourceState(src).LastDocNo)

	// A later cycle with lower numbers never regresses the maximum.
	_, err = d.Detect(src, []*record.Record{
		record.FromPairs("DOC_NO", "1002", "TOTAL", "2.00"),
	}, opts)
	require.NoError(t, err)
	assert.Equal(t, int64(1005), store.SourceState(src).LastDocNo)
}

func TestDetect_SecondaryCounterNonNumericIgnored(t *testing.T) {
	d, store := newTestDetector(t)
	src := "INVOICE.DBF"
	opts := Options{KeyField: "PART_NO", TrackSecondary: true}

	cs, err := d.Detect(src, []*record.Record{
		record.FromPairs("PART_NO", "A", "DOC_NO", "not-a-number"),
		record.FromPairs("PART_NO", "B"),
	}, opts)
	require.NoError(t, err)

	assert.Len(t, cs.New, 2)
	assert.Equal(t, int64(0), store.SourceState(src).LastDocNo)
}

func TestDetect_RequiresKeyField(t *testing.T) {
	d, _ := newTestDetector(t)

	_, err := d.Detect("STOCK.DBF", nil, Options{})
	assert.Error(t, err)
}

func TestDetect_StatePersistedAcrossStores(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	store := state.NewStore(path, zap.NewNop())
	store.Load()
	d := NewDetector(store, nil, zap.NewNop())

	_, err := d.Detect("STOCK.DBF", []*record.Record{record.FromPairs("PART_NO", "A")}, stockOpts())
	require.NoError(t, err)

	// Fresh store + detector over the same file: no re-detection.
	store2 := state.NewStore(path, zap.NewNop())
	store2.Load()
	d2 := NewDetector(store2, nil, zap.NewNop())

	cs, err := d2.Detect("STOCK.DBF", []*record.Record{record.FromPairs("PART_NO", "A")}, stockOpts())
	require.NoError(t, err)
	assert.Empty(t, cs.New)
	require.Len(t, cs.Unchanged, 1)
}

func TestDetect_LastSeenAdvances(t *testing.T) {
	d, store := newTestDetector(t)
	src := "STOCK.DBF"

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return t0 }
	_, err := d.Detect(src, []*record.Record{record.FromPairs("PART_NO", "A")}, stockOpts())
	require.NoError(t, err)

	t1 := t0.Add(30 * time.Second)
	d.now = func() time.Time { return t1 }
	_, err = d.Detect(src, []*record.Record{record.FromPairs("PART_NO", "A")}, stockOpts())
	require.NoError(t, err)

	st := store.SourceState(src)
	assert.True(t, st.Records["A"].LastSeen.Equal(t1))
	assert.True(t, st.LastProcessed.Equal(t1))
}

func TestDetect_SourcesAreIndependent(t *testing.T) {
	d, _ := newTestDetector(t)

	_, err := d.Detect("STOCK.DBF", []*record.Record{record.FromPairs("PART_NO", "A")}, stockOpts())
	require.NoError(t, err)

	// Same key in another source is New there, not Unchanged.
	cs, err := d.Detect("INVOICE.DBF", []*record.Record{record.FromPairs("PART_NO", "A")}, stockOpts())
	require.NoError(t, err)
	assert.Len(t, cs.New, 1)
}

func TestChangeSet_SyncRecords(t *testing.T) {
	d, _ := newTestDetector(t)
	src := "STOCK.DBF"

	_, err := d.Detect(src, []*record.Record{
		record.FromPairs("PART_NO", "A", "PRICE", "1.00"),
		record.FromPairs("PART_NO", "B", "PRICE", "2.00"),
	}, stockOpts())
	require.NoError(t, err)

	cs, err := d.Detect(src, []*record.Record{
		record.FromPairs("PART_NO", "A", "PRICE", "9.00"),
		record.FromPairs("PART_NO", "B", "PRICE", "2.00"),
		record.FromPairs("PART_NO", "C", "PRICE", "3.00"),
	}, stockOpts())
	require.NoError(t, err)

	recs := cs.SyncRecords()
	require.Len(t, recs, 2)
	assert.Equal(t, "C", recs[0].GetString("PART_NO"))
	assert.Equal(t, "A", recs[1].GetString("PART_NO"))
	assert.True(t, cs.HasChanges())
}
