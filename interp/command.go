package interp

import (
	"go.uber.org/zap"
)

// CommandFunc implements a command registered with RegisterCommand.
// objv[0] is the command word. A non-zero result becomes the interpreter result.
type CommandFunc func(ip *Interp, objv []Obj) (Obj, Status)

// CreateObjCommand registers a native Tcl_ObjCmdProc under name using the
// runtime's calling convention directly. proc, clientData and deleteProc
// are handed to the runtime as is.
func (ip *Interp) CreateObjCommand(name string, proc, clientData, deleteProc uintptr) Status {
	if !ip.Alive() {
		return BootstrapFail
	}
	if proc == 0 {
		return Error
	}
	if ip.b.API().CreateObjCommand(ip.handle, name, proc, clientData, deleteProc) == 0 {
		ip.log.Warn("tcl rejected command", zap.String("command", name))
		return Error
	}
	return OK
}

// RegisterCommand registers fn under name. onDelete, if set, runs once when
// the command is redefined or the interpreter is closed.
func (ip *Interp) RegisterCommand(name string, fn CommandFunc, onDelete func()) Status {
	if !ip.Alive() {
		return BootstrapFail
	}
	if fn == nil {
		return Error
	}

	proc := func(_ uintptr, objv []uintptr) int32 {
		args := make([]Obj, len(objv))
		for i, o := range objv {
			args[i] = Obj(o)
		}
		res, st := fn(ip, args)
		if res != 0 {
			if rs := ip.SetResult(res); rs != OK {
				ip.log.Debug("set tcl command result", zap.String("command", name), zap.Stringer("status", rs))
			}
		}
		return int32(st)
	}

	if _, err := ip.b.CreateCommand(ip.handle, name, proc, onDelete); err != nil {
		ip.log.Warn("register tcl command", zap.String("command", name), zap.Error(err))
		return Error
	}
	return OK
}
