package detect

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"esl-middleware/core/record"
	"esl-middleware/core/utils"
)

// Fingerprint computes a deterministic content hash of a record's
// non-excluded fields. Two records with identical non-excluded, normalized
// field values yield identical fingerprints regardless of input field
// order; this is the property the whole detection pipeline rests on.
//
// Excluded field names match case-insensitively and are omitted from the
// hash input entirely, not zeroed, so adding or removing an excluded field
// from the source schema never disturbs fingerprints of other fields.
func Fingerprint(rec *record.Record, excluded []string) string {
	skip := make(map[string]struct{}, len(excluded))
	for _, name := range excluded {
		skip[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	type entry struct {
		name  string
		value string
	}
	entries := make([]entry, 0, rec.Len())
	for _, f := range rec.Fields() {
		name := strings.ToLower(f.Name)
		if _, ok := skip[name]; ok {
			continue
		}
		entries = append(entries, entry{name: name, value: normalizeValue(f.Value)})
	}

	// Fixed lexicographic order over lowercased names, so source field
	// ordering never affects the digest.
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.name))
		h.Write([]byte{'='})
		h.Write([]byte(e.value))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// normalizeValue maps a field value to its canonical string form: nil and
// empty become "", numerics render as canonical decimal strings with no
// trailing-zero ambiguity, strings are trimmed of surrounding whitespace.
func normalizeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, _ := utils.ToInt64(t)
		return strconv.FormatInt(n, 10)
	default:
		return strings.TrimSpace(utils.ToString(t))
	}
}
