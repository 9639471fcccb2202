//go:build gkzg_debug

package debug

// Debug is true when the gkzg_debug build tag is set.
const Debug = true
