// Package server holds the HTTP status server configuration.
//
// The main application entry point handles the server startup; this package
// defines the configuration structure: whether the HTTP surface is enabled,
// the listen port, and the optional API key.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by cmd/start to decide whether to run the Fiber app.
package server
