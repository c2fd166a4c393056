// Package record defines the flat field-value record exchanged between the
// table reader, the change detector, and the CSV transformer.
//
// A Record has no inherent identity; the detector extracts a key from a
// configurable field. Field names are matched case-insensitively because
// different POS export versions disagree on column name casing.
package record
