// Package storage delivers produced CSV files to an S3-compatible object
// store.
//
// The local output directory is the primary delivery path; uploading is an
// optional secondary channel, off by default, for sites where the label
// software pulls from a bucket instead of a shared folder.
//
// Client narrows the Minio API to the operations the uploader uses so tests
// can substitute the mock in mocks/.
package storage
