package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"esl-middleware/core/record"
	"esl-middleware/core/utils"

	"go.uber.org/zap"
)

// Transformer maps source records onto ESL rows.
type Transformer struct {
	logger *zap.Logger

	// now is swapped out in tests for deterministic timestamps.
	now func() time.Time
}

func NewTransformer(logger *zap.Logger) *Transformer {
	return &Transformer{
		logger: logger,
		now:    time.Now,
	}
}

// Transform maps one record using the field mapping for the table kind.
// Missing attributes take their zero defaults rather than failing the row.
func (t *Transformer) Transform(rec *record.Record, kind Kind) ESLRecord {
	m := MappingFor(kind)

	out := ESLRecord{
		CurrentPrice:  "0.00",
		TransactionID: "0",
		TimeStampUTC:  t.now().UTC().Format(time.RFC3339),
	}

	if v, ok := firstMatch(rec, m.SKU); ok {
		out.SKU = strings.TrimSpace(utils.ToString(v))
	}
	if v, ok := firstMatch(rec, m.Price); ok {
		out.CurrentPrice = ParsePrice(v)
	}
	if v, ok := firstMatch(rec, m.Quantity); ok {
		out.StockQuantity = ParseQuantity(v)
	}
	if v, ok := firstMatch(rec, m.TransactionID); ok {
		if s := strings.TrimSpace(utils.ToString(v)); s != "" {
			out.TransactionID = s
		}
	}
	return out
}

// TransformBatch maps a batch of records, dropping rows that resolve to an
// empty SKU since the label software cannot address them.
func (t *Transformer) TransformBatch(records []*record.Record, kind Kind) []ESLRecord {
	out := make([]ESLRecord, 0, len(records))
	for _, rec := range records {
		row := t.Transform(rec, kind)
		if row.SKU == "" {
			t.logger.Debug("dropping row without SKU", zap.String("kind", string(kind)))
			continue
		}
		out = append(out, row)
	}
	return out
}

// firstMatch returns the value of the first candidate field present in the
// record. A field present with a nil value still counts as a match.
func firstMatch(rec *record.Record, candidates []string) (any, bool) {
	for _, name := range candidates {
		if v, ok := rec.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// ParsePrice coerces a price value to a two-decimal string. String inputs
// may carry currency symbols and thousands separators; anything that still
// fails to parse falls back to "0.00".
func ParsePrice(v any) string {
	if f, ok := utils.ToFloat64(v); ok {
		return fmt.Sprintf("%.2f", f)
	}
	s := strings.TrimSpace(utils.ToString(v))
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", f)
}

// ParseQuantity coerces a quantity value to an integer. String inputs may
// carry thousands separators or accounting-style negatives, where (123)
// means -123. Unparseable values become 0.
func ParseQuantity(v any) int64 {
	if n, ok := utils.ToInt64(v); ok {
		return n
	}
	if f, ok := utils.ToFloat64(v); ok {
		return int64(f)
	}
	s := strings.ReplaceAll(strings.TrimSpace(utils.ToString(v)), ",", "")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}
