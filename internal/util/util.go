//go:build !windows

// Package util holds platform helpers for the command line entry point.
package util

// LaunchedFromExplorer reports whether the binary was started by
// double-clicking it. Always false outside Windows.
func LaunchedFromExplorer() bool {
	return false
}
