// Package utils provides common utility functions for tablediff.
// It includes helpers for converting the loosely typed scalar values that
// come back from database drivers (int64, []byte, nil) into the uniform
// representations the engines and the report renderer work with.
package utils
