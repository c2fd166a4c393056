// Package dbf reads the table-file snapshots exported by the point-of-sale
// system.
//
// It parses dBase III/IV and FoxPro table files: the 32-byte header, the
// field descriptor array, and fixed-width records with a per-row deletion
// flag. Text is decoded from Latin-1, the encoding the POS export uses.
//
// # Memo Files
//
// Tables with memo columns (type M) store long values in a sibling file:
// .fpt for FoxPro (block size in the header, typed block entries) or .dbt
// for dBase (fixed 512-byte blocks terminated by 0x1A). FindTables pairs
// siblings case-insensitively by file stem.
//
// # Failure Mode
//
// Read is all-or-nothing. A truncated or structurally inconsistent file
// returns an error and no records, so the change detector never sees a
// partial snapshot from an export that was still being written.
package dbf
