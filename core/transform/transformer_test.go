package transform

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"esl-middleware/core/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTransformer() *Transformer {
	tr := NewTransformer(zap.NewNop())
	tr.now = func() time.Time {
		return time.Date(2026, 8, 23, 9, 30, 15, 0, time.UTC)
	}
	return tr
}

func TestTransformStockRecord(t *testing.T) {
	rec := record.FromPairs(
		"PART_NO", "ABC123",
		"PRICE", 19.9,
		"STOCK", int64(42),
		"DOC_NO", int64(1001),
	)

	row := newTestTransformer().Transform(rec, KindStock)

	assert.Equal(t, "ABC123", row.SKU)
	assert.Equal(t, "19.90", row.CurrentPrice)
	assert.Equal(t, int64(42), row.StockQuantity)
	assert.Equal(t, "1001", row.TransactionID)
	assert.Equal(t, "2026-08-23T09:30:15Z", row.TimeStampUTC)
}

func TestTransformUsesCandidateOrder(t *testing.T) {
	// SELL_PRICE only matches because PRICE is absent.
	rec := record.FromPairs(
		"ITEM_CODE", "X9",
		"SELL_PRICE", "5.5",
		"STOCK_QTY", "7",
	)

	row := newTestTransformer().Transform(rec, KindStock)

	assert.Equal(t, "X9", row.SKU)
	assert.Equal(t, "5.50", row.CurrentPrice)
	assert.Equal(t, int64(7), row.StockQuantity)
}

func TestTransformFieldLookupIsCaseInsensitive(t *testing.T) {
	rec := record.FromPairs("part_no", "lower1", "Price", "3")

	row := newTestTransformer().Transform(rec, KindStock)

	assert.Equal(t, "lower1", row.SKU)
	assert.Equal(t, "3.00", row.CurrentPrice)
}

func TestTransformTransactionMapping(t *testing.T) {
	rec := record.FromPairs(
		"ITEM_CODE", "T100",
		"UNIT_PRICE", "12.345",
		"QTY_SOLD", int64(-3),
		"INVOICE_NO", "INV-88",
	)

	row := newTestTransformer().Transform(rec, KindTransaction)

	assert.Equal(t, "T100", row.SKU)
	assert.Equal(t, "12.35", row.CurrentPrice)
	assert.Equal(t, int64(-3), row.StockQuantity)
	assert.Equal(t, "INV-88", row.TransactionID)
}

func TestTransformDefaults(t *testing.T) {
	rec := record.FromPairs("UNRELATED", "x")

	row := newTestTransformer().Transform(rec, KindStock)

	assert.Equal(t, "", row.SKU)
	assert.Equal(t, "0.00", row.CurrentPrice)
	assert.Equal(t, int64(0), row.StockQuantity)
	assert.Equal(t, "0", row.TransactionID)
}

func TestTransformBatchDropsRowsWithoutSKU(t *testing.T) {
	records := []*record.Record{
		record.FromPairs("PART_NO", "A1", "PRICE", "1"),
		record.FromPairs("PRICE", "2"),
		record.FromPairs("PART_NO", "  ", "PRICE", "3"),
	}

	rows := newTestTransformer().TransformBatch(records, KindStock)

	require.Len(t, rows, 1)
	assert.Equal(t, "A1", rows[0].SKU)
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"float", 19.9, "19.90"},
		{"int", int64(7), "7.00"},
		{"plain string", "3.456", "3.46"},
		{"currency symbol", "$1,234.5", "1234.50"},
		{"blank", "  ", "0.00"},
		{"nil", nil, "0.00"},
		{"garbage", "n/a", "0.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParsePrice(tc.in))
		})
	}
}

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int64
	}{
		{"int", int64(42), 42},
		{"float truncates", 41.9, 41},
		{"string", "15", 15},
		{"thousands separator", "1,200", 1200},
		{"accounting negative", "(123)", -123},
		{"blank", "", 0},
		{"nil", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseQuantity(tc.in))
		})
	}
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, KindStock, DetectKind("STOCK.DBF"))
	assert.Equal(t, KindStock, DetectKind("inventory_main.dbf"))
	assert.Equal(t, KindTransaction, DetectKind("INVOICE.DBF"))
	assert.Equal(t, KindTransaction, DetectKind("trans_log.dbf"))
	assert.Equal(t, KindTransaction, DetectKind("Sales.dbf"))
	assert.Equal(t, KindStock, DetectKind("items.dbf"))
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 8, 23, 9, 30, 15, 0, time.UTC)
	assert.Equal(t, "STOCK_20260823093015.csv", Filename("stock.dbf", at))
	assert.Equal(t, "TRANS_LOG_20260823093015.csv", Filename("Trans_Log.DBF", at))
}

func TestWriterWritesCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, zap.NewNop())

	rows := []ESLRecord{
		{SKU: "A1", CurrentPrice: "19.90", StockQuantity: 42, TransactionID: "1001", TimeStampUTC: "2026-08-23T09:30:15Z"},
		{SKU: "B2", CurrentPrice: "0.50", StockQuantity: -3, TransactionID: "0", TimeStampUTC: "2026-08-23T09:30:15Z"},
	}

	path, err := w.Write(rows, "STOCK_20260823093015.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "STOCK_20260823093015.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Headers(), got[0])
	assert.Equal(t, []string{"A1", "19.90", "42", "1001", "2026-08-23T09:30:15Z"}, got[1])
	assert.Equal(t, []string{"B2", "0.50", "-3", "0", "2026-08-23T09:30:15Z"}, got[2])
}

func TestWriterBacksUpExistingFile(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, zap.NewNop())

	_, err := w.Write([]ESLRecord{{SKU: "OLD"}}, "STOCK_X.csv")
	require.NoError(t, err)
	_, err = w.Write([]ESLRecord{{SKU: "NEW"}}, "STOCK_X.csv")
	require.NoError(t, err)

	backup, err := os.ReadFile(filepath.Join(dir, "STOCK_X.bak"))
	require.NoError(t, err)
	assert.Contains(t, string(backup), "OLD")

	current, err := os.ReadFile(filepath.Join(dir, "STOCK_X.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(current), "NEW")
}

func TestWriterLeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, zap.NewNop())

	_, err := w.Write([]ESLRecord{{SKU: "A1"}}, "OUT.csv")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestWriterCreatesOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := NewWriter(dir, zap.NewNop())

	path, err := w.Write([]ESLRecord{{SKU: "A1"}}, "OUT.csv")
	require.NoError(t, err)
	assert.FileExists(t, path)
}
