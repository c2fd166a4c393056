package dbf

// Field types as stored in the descriptor array. Memo-class types resolve
// their content through the sibling memo file.
const (
	TypeCharacter = 'C'
	TypeNumeric   = 'N'
	TypeFloat     = 'F'
	TypeDate      = 'D'
	TypeLogical   = 'L'
	TypeInteger   = 'I'
	TypeMemo      = 'M'
)

// FieldDescriptor describes one column of a table file.
type FieldDescriptor struct {
	// Name is the column name (max 10 bytes in the file format).
	Name string `json:"name"`

	// Type is the single-letter column type (C, N, F, D, L, I, M).
	Type byte `json:"-"`

	// TypeName is the type letter as a string, for display.
	TypeName string `json:"type"`

	// Length is the fixed on-disk width of the column in bytes.
	Length int `json:"length"`

	// DecimalCount is the number of decimal places for numeric columns.
	DecimalCount int `json:"decimal_count"`
}

// TableInfo is the parsed structure of a table file.
type TableInfo struct {
	// Path is the table file location.
	Path string `json:"path"`

	// MemoPath is the sibling memo file, empty when the table has none.
	MemoPath string `json:"memo_path,omitempty"`

	// Version is the format version byte from the header.
	Version byte `json:"version"`

	// RecordCount is the number of physical records, deleted rows
	// included.
	RecordCount int `json:"record_count"`

	// RecordLength is the fixed on-disk record width, deletion flag
	// included.
	RecordLength int `json:"record_length"`

	// Fields are the column descriptors in file order.
	Fields []FieldDescriptor `json:"fields"`
}

// Table is one discovered source table with its optional memo sibling.
type Table struct {
	// Path is the table file location.
	Path string

	// MemoPath is the sibling memo file, empty when absent.
	MemoPath string

	// Name is the table file base name, used as the source identity for
	// state tracking.
	Name string
}
