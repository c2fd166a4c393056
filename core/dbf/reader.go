package dbf

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"esl-middleware/core/record"

	"golang.org/x/text/encoding/charmap"
)

const (
	headerSize      = 32
	fieldDescSize   = 32
	fieldTerminator = 0x0D
	deletedFlag     = '*'
)

// latin1 decodes the single-byte text encoding used by the POS exports.
var latin1 = charmap.ISO8859_1

// FindTables discovers table files in a directory, pairing each with its
// memo sibling (same stem, .fpt or .dbt extension, any case). Results are
// sorted by file name so cycles iterate sources in a stable order.
func FindTables(dir string) ([]Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list input directory: %w", err)
	}

	// Index every file by lowercased stem for case-insensitive memo
	// pairing; exports from Windows machines mix cases freely.
	type sibling struct{ name, ext string }
	byStem := make(map[string][]sibling)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		stem := strings.ToLower(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		byStem[stem] = append(byStem[stem], sibling{name: e.Name(), ext: ext})
	}

	var tables []Table
	for _, files := range byStem {
		var dbfName, memoName string
		for _, f := range files {
			switch f.ext {
			case ".dbf":
				dbfName = f.name
			case ".fpt", ".dbt":
				memoName = f.name
			}
		}
		if dbfName == "" {
			continue
		}
		t := Table{
			Path: filepath.Join(dir, dbfName),
			Name: dbfName,
		}
		if memoName != "" {
			t.MemoPath = filepath.Join(dir, memoName)
		}
		tables = append(tables, t)
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, nil
}

// Schema parses the table header and field descriptors without reading
// any records.
func Schema(path string) (*TableInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	return parseHeader(path, data)
}

// Read parses a complete table file into records. Deleted rows are
// skipped. The read is all-or-nothing: a truncated or malformed file
// returns an error and no records, so a partially written export never
// produces a partial snapshot downstream.
func Read(t Table) ([]*record.Record, error) {
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", t.Path, err)
	}

	info, err := parseHeader(t.Path, data)
	if err != nil {
		return nil, err
	}

	var memo *memoFile
	if hasMemoFields(info) {
		memo, err = openMemo(t.MemoPath)
		if err != nil {
			return nil, err
		}
	}

	headerLen := int(binary.LittleEndian.Uint16(data[8:10]))
	records := make([]*record.Record, 0, info.RecordCount)

	off := headerLen
	for i := 0; i < info.RecordCount; i++ {
		if off+info.RecordLength > len(data) {
			return nil, fmt.Errorf("table %s: truncated at record %d of %d", t.Path, i, info.RecordCount)
		}
		row := data[off : off+info.RecordLength]
		off += info.RecordLength

		if row[0] == deletedFlag {
			continue
		}

		rec := record.New()
		pos := 1
		for _, f := range info.Fields {
			raw := row[pos : pos+f.Length]
			pos += f.Length

			val, err := decodeField(f, raw, memo)
			if err != nil {
				return nil, fmt.Errorf("table %s: record %d field %s: %w", t.Path, i, f.Name, err)
			}
			rec.Set(f.Name, val)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseHeader(path string, data []byte) (*TableInfo, error) {
	if len(data) < headerSize+1 {
		return nil, fmt.Errorf("table %s: file too short for header", path)
	}

	info := &TableInfo{
		Path:         path,
		Version:      data[0],
		RecordCount:  int(binary.LittleEndian.Uint32(data[4:8])),
		RecordLength: int(binary.LittleEndian.Uint16(data[10:12])),
	}
	headerLen := int(binary.LittleEndian.Uint16(data[8:10]))
	if headerLen > len(data) {
		return nil, fmt.Errorf("table %s: header length %d exceeds file size", path, headerLen)
	}

	fieldBytes := 1 // deletion flag
	for off := headerSize; off+fieldDescSize <= headerLen && data[off] != fieldTerminator; off += fieldDescSize {
		desc := data[off : off+fieldDescSize]
		name := string(desc[:11])
		if i := strings.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		name = strings.TrimSpace(name)
		if name == "" {
			break
		}
		f := FieldDescriptor{
			Name:         name,
			Type:         desc[11],
			TypeName:     string(desc[11]),
			Length:       int(desc[16]),
			DecimalCount: int(desc[17]),
		}
		info.Fields = append(info.Fields, f)
		fieldBytes += f.Length
	}

	if len(info.Fields) == 0 {
		return nil, fmt.Errorf("table %s: no field descriptors", path)
	}
	if fieldBytes != info.RecordLength {
		return nil, fmt.Errorf("table %s: field widths sum to %d but record length is %d",
			path, fieldBytes, info.RecordLength)
	}
	return info, nil
}

func hasMemoFields(info *TableInfo) bool {
	for _, f := range info.Fields {
		if f.Type == TypeMemo {
			return true
		}
	}
	return false
}

func decodeField(f FieldDescriptor, raw []byte, memo *memoFile) (any, error) {
	switch f.Type {
	case TypeCharacter:
		return decodeText(raw), nil

	case TypeNumeric, TypeFloat:
		s := strings.TrimSpace(string(raw))
		if s == "" {
			return nil, nil
		}
		if f.DecimalCount > 0 || strings.Contains(s, ".") {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				// Some exports pad numerics with stray characters;
				// surface the raw text rather than failing the row.
				return strings.TrimSpace(s), nil
			}
			return v, nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return strings.TrimSpace(s), nil
		}
		return v, nil

	case TypeDate:
		s := strings.TrimSpace(string(raw))
		if len(s) != 8 {
			return "", nil
		}
		return s[0:4] + "-" + s[4:6] + "-" + s[6:8], nil

	case TypeLogical:
		if len(raw) == 0 {
			return nil, nil
		}
		switch raw[0] {
		case 'T', 't', 'Y', 'y':
			return true, nil
		case 'F', 'f', 'N', 'n':
			return false, nil
		default: // '?' or space: uninitialised
			return nil, nil
		}

	case TypeInteger:
		if len(raw) != 4 {
			return nil, fmt.Errorf("integer field has width %d", len(raw))
		}
		return int64(int32(binary.LittleEndian.Uint32(raw))), nil

	case TypeMemo:
		block, ok := memoBlockRef(raw)
		if !ok {
			return "", nil
		}
		if memo == nil {
			return "", fmt.Errorf("memo block %d referenced but no memo file present", block)
		}
		return memo.read(block)

	default:
		// Unknown column types pass through as text so fingerprints still
		// cover them.
		return decodeText(raw), nil
	}
}

// memoBlockRef extracts the memo block number from a memo field value:
// a 4-byte little-endian integer in FoxPro tables, an ASCII number padded
// with spaces in dBase tables. Zero or blank means no memo.
func memoBlockRef(raw []byte) (int, bool) {
	if len(raw) == 4 {
		n := int(binary.LittleEndian.Uint32(raw))
		return n, n > 0
	}
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func decodeText(raw []byte) string {
	decoded, err := latin1.NewDecoder().Bytes(raw)
	if err != nil {
		// Latin-1 maps every byte; decoding cannot actually fail.
		decoded = raw
	}
	return strings.TrimSpace(strings.TrimRight(string(decoded), "\x00"))
}
