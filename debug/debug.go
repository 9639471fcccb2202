//go:build !gkzg_debug

// Package debug exposes build-mode information used by the logger and by
// internal sanity checks.
package debug

// Debug is true when the gkzg_debug build tag is set.
const Debug = false
