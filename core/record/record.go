package record

import (
	"strings"

	"esl-middleware/core/utils"
)

// Field is a single named value inside a Record. Values are the scalar
// types produced by the table reader: string, int64, float64, bool, or nil.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered field-name to value mapping read from one snapshot
// of one source table. Field names are looked up case-insensitively.
// Order is preserved from the source but carries no meaning; nothing
// downstream may depend on it.
type Record struct {
	fields []Field
	index  map[string]int
}

// New creates an empty Record.
func New() *Record {
	return &Record{index: make(map[string]int)}
}

// FromPairs creates a Record from alternating name/value pairs. It is a
// convenience for tests and panics on an odd number of arguments.
func FromPairs(pairs ...any) *Record {
	if len(pairs)%2 != 0 {
		panic("record.FromPairs: odd number of arguments")
	}
	r := New()
	for i := 0; i < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1])
	}
	return r
}

// Set adds a field or overwrites an existing one with the same
// (case-insensitive) name, keeping its original position.
func (r *Record) Set(name string, value any) {
	key := strings.ToLower(name)
	if pos, ok := r.index[key]; ok {
		r.fields[pos].Value = value
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Get returns the value for a field name, matched case-insensitively.
func (r *Record) Get(name string) (any, bool) {
	pos, ok := r.index[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return r.fields[pos].Value, true
}

// GetString returns the field value rendered as a trimmed string,
// or "" when the field is absent or nil.
func (r *Record) GetString(name string) string {
	v, ok := r.Get(name)
	if !ok {
		return ""
	}
	return strings.TrimSpace(utils.ToString(v))
}

// Fields returns a copy of the fields in source order.
func (r *Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}
