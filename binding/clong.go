//go:build !windows

package binding

// CLong is the Go type matching C long on LP64 platforms.
type CLong = int64
