package interp

import (
	"go.uber.org/zap"
)

// SetVar sets the variable name, or the element scope of array name when
// scope is not empty. flags are passed to the runtime unchanged.
func (ip *Interp) SetVar(name, scope string, value Obj, flags VarFlags) Status {
	if !ip.Alive() {
		return BootstrapFail
	}
	if value == 0 {
		return Error
	}
	api := ip.b.API()
	part1, part2 := ip.varName(name, scope)
	if part1 == 0 {
		return Error
	}
	if api.ObjSetVar2(ip.handle, part1, part2, uintptr(value), int32(flags)) == 0 {
		return Error
	}
	return OK
}

// GetVar reads the variable name, or the element scope of array name.
// A missing variable reports Error; with LeaveErrMsg the runtime also
// leaves a message in the result.
func (ip *Interp) GetVar(name, scope string, flags VarFlags) (Obj, Status) {
	if !ip.Alive() {
		return 0, BootstrapFail
	}
	part1, part2 := ip.varName(name, scope)
	if part1 == 0 {
		return 0, Error
	}
	v := ip.b.API().ObjGetVar2(ip.handle, part1, part2, int32(flags))
	if v == 0 {
		return 0, Error
	}
	return Obj(v), OK
}

func (ip *Interp) varName(name, scope string) (part1, part2 uintptr) {
	part1 = uintptr(ip.NewString(name))
	if scope != "" {
		part2 = uintptr(ip.NewString(scope))
	}
	return part1, part2
}

// RegisterID stores id in the global IDVar variable.
func (ip *Interp) RegisterID(id uint32) Status {
	if !ip.Alive() {
		return BootstrapFail
	}
	st := ip.SetVar(IDVar, "", ip.NewLong(int64(id)), GlobalOnly)
	if st == OK {
		ip.id = id
	}
	return st
}

// ID reads the identifier back from the global IDVar variable.
func (ip *Interp) ID() (uint32, Status) {
	o, st := ip.GetVar(IDVar, "", GlobalOnly)
	if st != OK {
		return 0, st
	}
	v, st := ip.ToLong(o)
	if st != OK {
		ip.log.Debug("tcl interpreter id is not an integer", zap.Uint32("assigned", ip.id))
	}
	return uint32(v), st
}
