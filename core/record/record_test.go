package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_CaseInsensitiveLookup(t *testing.T) {
	r := New()
	r.Set("PART_NO", "A100")

	v, ok := r.Get("part_no")
	assert.True(t, ok)
	assert.Equal(t, "A100", v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRecord_SetOverwritesInPlace(t *testing.T) {
	r := New()
	r.Set("PRICE", 10.0)
	r.Set("STOCK", int64(5))
	r.Set("price", 12.0)

	assert.Equal(t, 2, r.Len())
	fields := r.Fields()
	assert.Equal(t, "PRICE", fields[0].Name)
	assert.Equal(t, 12.0, fields[0].Value)
}

func TestRecord_GetString(t *testing.T) {
	r := FromPairs("SKU", "  A100 ", "QTY", int64(3), "EMPTY", nil)

	assert.Equal(t, "A100", r.GetString("sku"))
	assert.Equal(t, "3", r.GetString("QTY"))
	assert.Equal(t, "", r.GetString("EMPTY"))
	assert.Equal(t, "", r.GetString("nope"))
}
