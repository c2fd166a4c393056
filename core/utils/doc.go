// Package utils provides common utility functions for the middleware.
// It includes helper functions for loosely-typed value conversion shared
// by the table reader and the CSV transformer, where field values arrive
// as any of string, integer, or float depending on the source column type.
package utils
