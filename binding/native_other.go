//go:build !(darwin || freebsd || linux || windows)

package binding

import (
	"runtime"

	"github.com/wippyai/tcl-runtime/errors"
)

type nativeLoader struct{}

// NativeLoader returns a loader that always fails on this platform.
// The wasm backend in binding/wasmlib works everywhere.
func NativeLoader() Loader {
	return nativeLoader{}
}

func (nativeLoader) DefaultFileName() string {
	return "libtcl8.6.so"
}

func (nativeLoader) Open(string) (Library, error) {
	return nil, errors.Unsupported(errors.PhaseLoad, "native libraries on "+runtime.GOOS)
}
