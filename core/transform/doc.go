// Package transform maps POS table records onto the CSV rows the
// shelf-label software imports.
//
// Source tables name the same attribute differently depending on which POS
// version produced the export, so each output attribute resolves through a
// fixed, priority-ordered candidate list of field names (see Mapping).
// Stock tables and transaction tables use separate lists; the table kind is
// detected from the file name.
//
// Writer publishes rows atomically: temp file, then rename, with the
// previous file of the same name preserved as a .bak sibling.
package transform
