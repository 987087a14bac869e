package binding

import (
	"path/filepath"

	"go.uber.org/zap"
)

// ThirdPartyDir is the directory under the resource directory that holds the library.
const ThirdPartyDir = "ThirdParty"

// ObjCmdFunc receives one invocation of a registered command.
// objv[0] is the command word; the slice is only valid during the call.
type ObjCmdFunc func(clientData, interp uintptr, objv []uintptr) int32

// CmdDeleteFunc receives the clientData of a command being deleted.
type CmdDeleteFunc func(clientData uintptr)

// Library is an opened Tcl library.
type Library interface {
	// Path returns the file the library was opened from.
	Path() string

	// Bind resolves symbol and stores a callable into fnPtr, which must
	// point to one of the function fields of API.
	Bind(symbol string, fnPtr any) error

	// Callbacks returns native addresses of a Tcl_ObjCmdProc and a
	// Tcl_CmdDeleteProc that forward to cmd and del.
	Callbacks(cmd ObjCmdFunc, del CmdDeleteFunc) (cmdProc, deleteProc uintptr, err error)

	// Close unloads the library.
	Close() error
}

// Loader opens libraries of one kind.
type Loader interface {
	Open(path string) (Library, error)

	// DefaultFileName is the library file name used when Options.FileName is empty.
	DefaultFileName() string
}

// Options configures where and how the library is loaded.
type Options struct {
	// Loader opens the library. Defaults to NativeLoader().
	Loader Loader

	// Logger overrides the package logger for this binding.
	Logger *zap.Logger

	// Dir is the resource directory; the library is expected in Dir/ThirdParty.
	Dir string

	// FileName overrides the loader's default library file name.
	FileName string
}

func (o Options) withDefaults() Options {
	if o.Loader == nil {
		o.Loader = NativeLoader()
	}
	if o.FileName == "" {
		o.FileName = o.Loader.DefaultFileName()
	}
	return o
}

// Path returns the full path the library is expected at.
func (o Options) Path() string {
	o = o.withDefaults()
	return filepath.Join(o.Dir, ThirdPartyDir, o.FileName)
}
