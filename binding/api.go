package binding

import (
	"reflect"
	"unsafe"
)

// Op identifies a bound entry point independently of its exported name.
type Op int

const (
	OpCreateInterp Op = iota
	OpEval
	OpCreateObjCommand
	OpObjSetVar2
	OpObjGetVar2
	OpGetObjResult
	OpSetStringObj
	OpNewStringObj
	OpNewLongObj
	OpSetIntObj
	OpGetIntFromObj
	OpGetLongFromObj
	OpGetDoubleFromObj
	OpDeleteInterp
	OpSetObjResult
	OpGetStringFromObj
	opCount
)

var opNames = [opCount]string{
	OpCreateInterp:     "create-interp",
	OpEval:             "eval",
	OpCreateObjCommand: "create-obj-command",
	OpObjSetVar2:       "obj-set-var2",
	OpObjGetVar2:       "obj-get-var2",
	OpGetObjResult:     "get-obj-result",
	OpSetStringObj:     "set-string-obj",
	OpNewStringObj:     "new-string-obj",
	OpNewLongObj:       "new-long-obj",
	OpSetIntObj:        "set-int-obj",
	OpGetIntFromObj:    "get-int-from-obj",
	OpGetLongFromObj:   "get-long-from-obj",
	OpGetDoubleFromObj: "get-double-from-obj",
	OpDeleteInterp:     "delete-interp",
	OpSetObjResult:     "set-obj-result",
	OpGetStringFromObj: "get-string-from-obj",
}

func (op Op) String() string {
	if op < 0 || op >= opCount {
		return "unknown"
	}
	return opNames[op]
}

// Symbol is one row of the binding table.
type Symbol struct {
	Fn       any // pointer to the API field that receives the function
	Name     string
	Op       Op
	Optional bool
}

// API holds the resolved entry points of the Tcl library.
//
// Handles (Tcl_Interp*, Tcl_Obj*, Tcl_Command) are carried as uintptr and
// never dereferenced on the Go side. Optional entries may be nil after a
// successful bind; callers check Has before using them.
type API struct {
	CreateInterp     func() uintptr
	Eval             func(interp uintptr, script string) int32
	CreateObjCommand func(interp uintptr, name string, proc, clientData, deleteProc uintptr) uintptr
	ObjSetVar2       func(interp, part1, part2, value uintptr, flags int32) uintptr
	ObjGetVar2       func(interp, part1, part2 uintptr, flags int32) uintptr
	GetObjResult     func(interp uintptr) uintptr
	SetStringObj     func(obj uintptr, bytes string, length int32)
	NewStringObj     func(bytes string, length int32) uintptr
	NewLongObj       func(value CLong) uintptr
	SetIntObj        func(obj uintptr, value int32)
	GetIntFromObj    func(interp, obj uintptr, out *int32) int32
	GetLongFromObj   func(interp, obj uintptr, out *CLong) int32
	GetDoubleFromObj func(interp, obj uintptr, out *float64) int32

	DeleteInterp     func(interp uintptr)
	SetObjResult     func(interp, obj uintptr)
	GetStringFromObj func(obj uintptr, length *int32) unsafe.Pointer
}

// Symbols returns the binding table for a.
// Adding an entry point means adding a field above and a row here.
func (a *API) Symbols() []Symbol {
	return []Symbol{
		{Op: OpCreateInterp, Name: "Tcl_CreateInterp", Fn: &a.CreateInterp},
		{Op: OpEval, Name: "Tcl_Eval", Fn: &a.Eval},
		{Op: OpCreateObjCommand, Name: "Tcl_CreateObjCommand", Fn: &a.CreateObjCommand},
		{Op: OpObjSetVar2, Name: "Tcl_ObjSetVar2", Fn: &a.ObjSetVar2},
		{Op: OpObjGetVar2, Name: "Tcl_ObjGetVar2", Fn: &a.ObjGetVar2},
		{Op: OpGetObjResult, Name: "Tcl_GetObjResult", Fn: &a.GetObjResult},
		{Op: OpSetStringObj, Name: "Tcl_SetStringObj", Fn: &a.SetStringObj},
		{Op: OpNewStringObj, Name: "Tcl_NewStringObj", Fn: &a.NewStringObj},
		{Op: OpNewLongObj, Name: "Tcl_NewLongObj", Fn: &a.NewLongObj},
		{Op: OpSetIntObj, Name: "Tcl_SetIntObj", Fn: &a.SetIntObj},
		{Op: OpGetIntFromObj, Name: "Tcl_GetIntFromObj", Fn: &a.GetIntFromObj},
		{Op: OpGetLongFromObj, Name: "Tcl_GetLongFromObj", Fn: &a.GetLongFromObj},
		{Op: OpGetDoubleFromObj, Name: "Tcl_GetDoubleFromObj", Fn: &a.GetDoubleFromObj},
		{Op: OpDeleteInterp, Name: "Tcl_DeleteInterp", Fn: &a.DeleteInterp, Optional: true},
		{Op: OpSetObjResult, Name: "Tcl_SetObjResult", Fn: &a.SetObjResult, Optional: true},
		{Op: OpGetStringFromObj, Name: "Tcl_GetStringFromObj", Fn: &a.GetStringFromObj, Optional: true},
	}
}

// Has reports whether the entry point for op is resolved.
func (a *API) Has(op Op) bool {
	if a == nil {
		return false
	}
	for _, s := range a.Symbols() {
		if s.Op == op {
			return !reflect.ValueOf(s.Fn).Elem().IsNil()
		}
	}
	return false
}

// RequiredSymbols returns the exported names that must all resolve for a bind to succeed.
func RequiredSymbols() []string {
	var names []string
	for _, s := range (&API{}).Symbols() {
		if !s.Optional {
			names = append(names, s.Name)
		}
	}
	return names
}

// interpHeader mirrors the public prefix of struct Tcl_Interp.
type interpHeader struct {
	resultDontUse    uintptr
	freeProcDontUse  uintptr
	errorLineDontUse int32
}

// InterpSizer is implemented by libraries whose interpreter layout differs
// from the host's (for example a wasm32 guest).
type InterpSizer interface {
	InterpSize() int
}

func interpSize(lib Library) int {
	if s, ok := lib.(InterpSizer); ok {
		return s.InterpSize()
	}
	return int(unsafe.Sizeof(interpHeader{}))
}
