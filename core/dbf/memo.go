package dbf

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	memoHeaderSize  = 512
	dbtBlockSize    = 512
	fptTextBlock    = 1
	memoTerminator  = 0x1A
	defaultFPTBlock = 64
)

type memoKind int

const (
	memoFPT memoKind = iota // FoxPro
	memoDBT                 // dBase III/IV
)

// memoFile resolves memo block references to their text content.
// FoxPro .fpt files carry a block size in the header and a typed block
// header per entry; dBase .dbt files use fixed 512-byte blocks with a
// 0x1A terminator.
type memoFile struct {
	kind      memoKind
	data      []byte
	blockSize int
}

// openMemo loads a memo file. An empty path is an error here because it is
// only called when the table actually declares memo columns.
func openMemo(path string) (*memoFile, error) {
	if path == "" {
		return nil, fmt.Errorf("table declares memo fields but no memo file was found")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read memo file %s: %w", path, err)
	}
	if len(data) < memoHeaderSize {
		return nil, fmt.Errorf("memo file %s: header too short", path)
	}

	m := &memoFile{data: data}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fpt":
		m.kind = memoFPT
		m.blockSize = int(binary.BigEndian.Uint16(data[6:8]))
		if m.blockSize <= 0 {
			m.blockSize = defaultFPTBlock
		}
	default:
		m.kind = memoDBT
		m.blockSize = dbtBlockSize
	}
	return m, nil
}

func (m *memoFile) read(block int) (string, error) {
	off := block * m.blockSize
	if off < 0 || off >= len(m.data) {
		return "", fmt.Errorf("memo block %d out of range", block)
	}

	if m.kind == memoFPT {
		if off+8 > len(m.data) {
			return "", fmt.Errorf("memo block %d: header truncated", block)
		}
		typ := binary.BigEndian.Uint32(m.data[off : off+4])
		length := int(binary.BigEndian.Uint32(m.data[off+4 : off+8]))
		if typ != fptTextBlock {
			// Picture/object blocks carry binary payloads the ESL flow
			// has no use for.
			return "", nil
		}
		end := off + 8 + length
		if end > len(m.data) {
			return "", fmt.Errorf("memo block %d: content truncated", block)
		}
		return decodeText(m.data[off+8 : end]), nil
	}

	// dBase: scan to the 0x1A terminator (doubled in most writers).
	end := off
	for end < len(m.data) && m.data[end] != memoTerminator {
		end++
	}
	return decodeText(m.data[off:end]), nil
}
