// Package filesystem provides filesystem implementations for doplug.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and an afero-backed filesystem
// used for tests.
package filesystem
