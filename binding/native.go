//go:build darwin || freebsd || linux || windows

package binding

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/wippyai/tcl-runtime/errors"
)

// registerFunc installs a Go function calling the native code at addr.
func registerFunc(fnPtr any, addr uintptr, symbol string) (err error) {
	if addr == 0 {
		return errors.SymbolNotFound(symbol, nil)
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseBind, errors.KindTypeMismatch).
				GoType(fmt.Sprintf("%T", fnPtr)).
				Detail("register %s: %v", symbol, r).
				Build()
		}
	}()
	purego.RegisterFunc(fnPtr, addr)
	return nil
}

// newCallbacks creates C-callable trampolines. Every parameter is
// pointer-sized so the same signatures work with the Windows callback ABI;
// objc is a C int and only its low 32 bits are meaningful.
func newCallbacks(cmd ObjCmdFunc, del CmdDeleteFunc) (cmdProc, deleteProc uintptr, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseHost, errors.KindRegistration).
				Detail("create native callback: %v", r).
				Build()
		}
	}()

	cmdProc = purego.NewCallback(func(clientData, interp, objc, objv uintptr) uintptr {
		n := int(int32(objc))
		var args []uintptr
		if n > 0 && objv != 0 {
			args = unsafe.Slice((*uintptr)(unsafe.Pointer(objv)), n)
		}
		return uintptr(uint32(cmd(clientData, interp, args)))
	})
	deleteProc = purego.NewCallback(func(clientData uintptr) uintptr {
		del(clientData)
		return 0
	})
	return cmdProc, deleteProc, nil
}
