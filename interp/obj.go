package interp

import (
	"math"
	"strings"
	"unsafe"

	"github.com/wippyai/tcl-runtime/binding"
)

// Obj is an opaque Tcl_Obj pointer owned by the runtime. 0 is the null object.
type Obj uintptr

// Result returns the interpreter result object.
func (ip *Interp) Result() (Obj, Status) {
	if !ip.Alive() {
		return 0, BootstrapFail
	}
	return Obj(ip.b.API().GetObjResult(ip.handle)), OK
}

// SetResult replaces the interpreter result.
func (ip *Interp) SetResult(o Obj) Status {
	if !ip.Alive() {
		return BootstrapFail
	}
	if o == 0 {
		return Error
	}
	api := ip.b.API()
	if !api.Has(binding.OpSetObjResult) {
		return Unsupported
	}
	api.SetObjResult(ip.handle, uintptr(o))
	return OK
}

// NewString creates a string object holding s, embedded NULs included.
// It returns 0 when ip is dead or s does not fit a C int length.
func (ip *Interp) NewString(s string) Obj {
	if !ip.Alive() {
		return 0
	}
	n, ok := cLen(s)
	if !ok {
		return 0
	}
	return Obj(ip.b.API().NewStringObj(s, n))
}

// cLen is the explicit length passed with s so the runtime never falls
// back to strlen.
func cLen(s string) (int32, bool) {
	if len(s) > math.MaxInt32 {
		return 0, false
	}
	return int32(len(s)), true
}

// NewLong creates an integer object. Where C long is 32 bits the value is truncated.
// It returns 0 when ip is dead.
func (ip *Interp) NewLong(v int64) Obj {
	if !ip.Alive() {
		return 0
	}
	return Obj(ip.b.API().NewLongObj(binding.CLong(v)))
}

// SetInt stores v in o.
func (ip *Interp) SetInt(o Obj, v int32) Status {
	if !ip.Alive() {
		return BootstrapFail
	}
	if o == 0 {
		return Error
	}
	ip.b.API().SetIntObj(uintptr(o), v)
	return OK
}

// SetString stores the first length bytes of s in o; a negative length stores all of s.
func (ip *Interp) SetString(o Obj, s string, length int) Status {
	if !ip.Alive() {
		return BootstrapFail
	}
	if o == 0 {
		return Error
	}
	if length < 0 || length > len(s) {
		length = len(s)
	}
	if length > math.MaxInt32 {
		return Error
	}
	ip.b.API().SetStringObj(uintptr(o), s, int32(length))
	return OK
}

// String returns the string representation of o.
func (ip *Interp) String(o Obj) (string, Status) {
	if !ip.Alive() {
		return "", BootstrapFail
	}
	if o == 0 {
		return "", Error
	}
	api := ip.b.API()
	if !api.Has(binding.OpGetStringFromObj) {
		return "", Unsupported
	}
	var n int32
	p := api.GetStringFromObj(uintptr(o), &n)
	if p == nil {
		return "", Error
	}
	if n == 0 {
		return "", OK
	}
	return strings.Clone(unsafe.String((*byte)(p), int(n))), OK
}

// ToInt reads o as a C int. On failure the runtime leaves a message in the result.
func (ip *Interp) ToInt(o Obj) (int32, Status) {
	if !ip.Alive() {
		return 0, BootstrapFail
	}
	if o == 0 {
		return 0, Error
	}
	var v int32
	st := Status(ip.b.API().GetIntFromObj(ip.handle, uintptr(o), &v))
	return v, st
}

// ToLong reads o as a C long.
func (ip *Interp) ToLong(o Obj) (int64, Status) {
	if !ip.Alive() {
		return 0, BootstrapFail
	}
	if o == 0 {
		return 0, Error
	}
	var v binding.CLong
	st := Status(ip.b.API().GetLongFromObj(ip.handle, uintptr(o), &v))
	return int64(v), st
}

// ToDouble reads o as a double.
func (ip *Interp) ToDouble(o Obj) (float64, Status) {
	if !ip.Alive() {
		return 0, BootstrapFail
	}
	if o == 0 {
		return 0, Error
	}
	var v float64
	st := Status(ip.b.API().GetDoubleFromObj(ip.handle, uintptr(o), &v))
	return v, st
}

// Convert reads o with the reader matching T: int32 and int use the int
// reader, int64 the long reader and float64 the double reader. Any other
// T yields the zero value with UnsupportedType on a live interpreter;
// callers must not treat that as a successful conversion.
func Convert[T any](ip *Interp, o Obj) (T, Status) {
	var zero T
	if !ip.Alive() {
		return zero, BootstrapFail
	}

	switch p := any(&zero).(type) {
	case *int32:
		v, st := ip.ToInt(o)
		*p = v
		return zero, st
	case *int:
		v, st := ip.ToInt(o)
		*p = int(v)
		return zero, st
	case *int64:
		v, st := ip.ToLong(o)
		*p = v
		return zero, st
	case *float64:
		v, st := ip.ToDouble(o)
		*p = v
		return zero, st
	}
	return zero, UnsupportedType
}
