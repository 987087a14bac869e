//go:build darwin || freebsd || linux

package binding

import (
	"runtime"

	"github.com/ebitengine/purego"

	"github.com/wippyai/tcl-runtime/errors"
)

type nativeLoader struct{}

// NativeLoader returns the loader for platform shared libraries.
func NativeLoader() Loader {
	return nativeLoader{}
}

func (nativeLoader) DefaultFileName() string {
	switch runtime.GOOS {
	case "darwin":
		return "libtcl8.6.dylib"
	case "freebsd":
		return "libtcl86.so"
	}
	return "libtcl8.6.so"
}

func (nativeLoader) Open(path string) (Library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, err
	}
	return &sharedLibrary{handle: h, path: path}, nil
}

// sharedLibrary is a dlopen'ed Tcl library.
type sharedLibrary struct {
	path   string
	handle uintptr
}

func (l *sharedLibrary) Path() string {
	return l.path
}

func (l *sharedLibrary) Bind(symbol string, fnPtr any) error {
	addr, err := purego.Dlsym(l.handle, symbol)
	if err != nil {
		return errors.SymbolNotFound(symbol, err)
	}
	return registerFunc(fnPtr, addr, symbol)
}

func (l *sharedLibrary) Callbacks(cmd ObjCmdFunc, del CmdDeleteFunc) (uintptr, uintptr, error) {
	return newCallbacks(cmd, del)
}

func (l *sharedLibrary) Close() error {
	return purego.Dlclose(l.handle)
}
