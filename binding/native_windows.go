package binding

import (
	"golang.org/x/sys/windows"

	"github.com/wippyai/tcl-runtime/errors"
)

type nativeLoader struct{}

// NativeLoader returns the loader for platform shared libraries.
func NativeLoader() Loader {
	return nativeLoader{}
}

func (nativeLoader) DefaultFileName() string {
	return "tcl86t.dll"
}

func (nativeLoader) Open(path string) (Library, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, err
	}
	return &sharedLibrary{dll: dll, path: path}, nil
}

// sharedLibrary is a DLL loaded with LoadLibrary.
type sharedLibrary struct {
	dll  *windows.DLL
	path string
}

func (l *sharedLibrary) Path() string {
	return l.path
}

func (l *sharedLibrary) Bind(symbol string, fnPtr any) error {
	proc, err := l.dll.FindProc(symbol)
	if err != nil {
		return errors.SymbolNotFound(symbol, err)
	}
	return registerFunc(fnPtr, proc.Addr(), symbol)
}

func (l *sharedLibrary) Callbacks(cmd ObjCmdFunc, del CmdDeleteFunc) (uintptr, uintptr, error) {
	return newCallbacks(cmd, del)
}

func (l *sharedLibrary) Close() error {
	return l.dll.Release()
}
