// Package faketcl is an in-process stand-in for the Tcl shared library.
//
// It implements the binding.Loader and binding.Library interfaces with Go
// functions of exactly the signatures binding.API expects, and a tiny
// evaluator that understands set, error, return, break, continue and any
// command registered through Tcl_CreateObjCommand. Handles are fake
// addresses that are never dereferenced.
package faketcl

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unsafe"

	"github.com/wippyai/tcl-runtime/binding"
	"github.com/wippyai/tcl-runtime/errors"
)

// Tcl status codes.
const (
	OK       int32 = 0
	Error    int32 = 1
	Return   int32 = 2
	Break    int32 = 3
	Continue int32 = 4
)

const (
	leaveErrMsg int32 = 0x200

	// Addresses handed out by Callbacks.
	procAddr   uintptr = 0xC0DE0010
	deleteAddr uintptr = 0xC0DE0020
)

// FileName is the default library file name of the fake loader.
const FileName = "libtclfake.so"

// Runtime is one fake library. It is not safe for concurrent use.
type Runtime struct {
	// Missing lists symbols that Bind reports as unresolved.
	Missing map[string]bool

	// OpenErr, when set, is returned by the loader's Open.
	OpenErr error

	// CallbackErr, when set, is returned by Callbacks.
	CallbackErr error

	Opens  int
	Closes int
	Binds  int

	objs     map[uintptr]*object
	interps  map[uintptr]*interpState
	dispatch binding.ObjCmdFunc
	release  binding.CmdDeleteFunc
	next     uintptr
}

type object struct {
	buf []byte
	s   string
}

type interpState struct {
	vars   map[string]uintptr
	arrays map[string]map[string]uintptr
	cmds   map[string]*cmdEntry
	result uintptr
}

type cmdEntry struct {
	proc       uintptr
	clientData uintptr
	deleteProc uintptr
}

// New creates an empty fake runtime.
func New() *Runtime {
	return &Runtime{
		Missing: make(map[string]bool),
		objs:    make(map[uintptr]*object),
		interps: make(map[uintptr]*interpState),
	}
}

// Install creates an empty library file at dir/ThirdParty/FileName so the
// binding's existence check passes, and returns its path.
func Install(dir string) (string, error) {
	path := filepath.Join(dir, binding.ThirdPartyDir, FileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, nil, 0o644)
}

// Loader returns a binding.Loader that opens r.
func (r *Runtime) Loader() binding.Loader {
	return loader{rt: r}
}

type loader struct {
	rt *Runtime
}

func (l loader) DefaultFileName() string {
	return FileName
}

func (l loader) Open(path string) (binding.Library, error) {
	l.rt.Opens++
	if l.rt.OpenErr != nil {
		return nil, l.rt.OpenErr
	}
	return &library{rt: l.rt, path: path}, nil
}

type library struct {
	rt   *Runtime
	path string
}

func (l *library) Path() string {
	return l.path
}

func (l *library) Bind(symbol string, fnPtr any) error {
	l.rt.Binds++
	if l.rt.Missing[symbol] {
		return errors.SymbolNotFound(symbol, nil)
	}
	impl, ok := l.rt.symbols()[symbol]
	if !ok {
		return errors.SymbolNotFound(symbol, nil)
	}
	dst := reflect.ValueOf(fnPtr)
	if dst.Kind() != reflect.Pointer || dst.Elem().Kind() != reflect.Func {
		return errors.TypeMismatch(errors.PhaseBind, dst.Type().String(), "want pointer to func")
	}
	src := reflect.ValueOf(impl)
	if src.Type() != dst.Elem().Type() {
		return errors.TypeMismatch(errors.PhaseBind, dst.Elem().Type().String(), "fake implements "+src.Type().String())
	}
	dst.Elem().Set(src)
	return nil
}

func (l *library) Callbacks(cmd binding.ObjCmdFunc, del binding.CmdDeleteFunc) (uintptr, uintptr, error) {
	if l.rt.CallbackErr != nil {
		return 0, 0, l.rt.CallbackErr
	}
	l.rt.dispatch = cmd
	l.rt.release = del
	return procAddr, deleteAddr, nil
}

func (l *library) Close() error {
	l.rt.Closes++
	return nil
}

func (r *Runtime) symbols() map[string]any {
	return map[string]any{
		"Tcl_CreateInterp":     r.createInterp,
		"Tcl_Eval":             r.eval,
		"Tcl_CreateObjCommand": r.createObjCommand,
		"Tcl_ObjSetVar2":       r.objSetVar2,
		"Tcl_ObjGetVar2":       r.objGetVar2,
		"Tcl_GetObjResult":     r.getObjResult,
		"Tcl_SetStringObj":     r.setStringObj,
		"Tcl_NewStringObj":     r.newStringObj,
		"Tcl_NewLongObj":       r.newLongObj,
		"Tcl_SetIntObj":        r.setIntObj,
		"Tcl_GetIntFromObj":    r.getIntFromObj,
		"Tcl_GetLongFromObj":   r.getLongFromObj,
		"Tcl_GetDoubleFromObj": r.getDoubleFromObj,
		"Tcl_DeleteInterp":     r.deleteInterp,
		"Tcl_SetObjResult":     r.setObjResult,
		"Tcl_GetStringFromObj": r.getStringFromObj,
	}
}

func (r *Runtime) alloc() uintptr {
	r.next++
	return 0x1000 + r.next*0x10
}

func (r *Runtime) newObj(s string) uintptr {
	h := r.alloc()
	r.objs[h] = &object{s: s}
	return h
}

func (r *Runtime) str(h uintptr) string {
	if o := r.objs[h]; o != nil {
		return o.s
	}
	return ""
}

func (r *Runtime) setResult(st *interpState, s string) {
	st.result = r.newObj(s)
}

// prefix applies Tcl's length argument: a negative length reads up to the
// first NUL, as strlen would on the C string the caller passed.
func prefix(s string, length int32) string {
	if length < 0 {
		if i := strings.IndexByte(s, 0); i >= 0 {
			return s[:i]
		}
		return s
	}
	if int(length) > len(s) {
		return s
	}
	return s[:length]
}

func (r *Runtime) createInterp() uintptr {
	h := r.alloc()
	r.interps[h] = &interpState{
		vars:   make(map[string]uintptr),
		arrays: make(map[string]map[string]uintptr),
		cmds:   make(map[string]*cmdEntry),
	}
	return h
}

func (r *Runtime) deleteInterp(interp uintptr) {
	st := r.interps[interp]
	if st == nil {
		return
	}
	delete(r.interps, interp)
	for _, name := range sortedKeys(st.cmds) {
		r.releaseEntry(st.cmds[name])
	}
}

func (r *Runtime) releaseEntry(e *cmdEntry) {
	if e != nil && e.deleteProc == deleteAddr && r.release != nil {
		r.release(e.clientData)
	}
}

func (r *Runtime) createObjCommand(interp uintptr, name string, proc, clientData, deleteProc uintptr) uintptr {
	st := r.interps[interp]
	if st == nil || proc == 0 {
		return 0
	}
	if old := st.cmds[name]; old != nil {
		r.releaseEntry(old)
	}
	st.cmds[name] = &cmdEntry{proc: proc, clientData: clientData, deleteProc: deleteProc}
	return r.alloc()
}

func (r *Runtime) objSetVar2(interp, part1, part2, value uintptr, flags int32) uintptr {
	st := r.interps[interp]
	if st == nil || value == 0 || r.objs[part1] == nil {
		return 0
	}
	name := r.str(part1)
	if part2 != 0 {
		arr := st.arrays[name]
		if arr == nil {
			if _, scalar := st.vars[name]; scalar {
				if flags&leaveErrMsg != 0 {
					r.setResult(st, fmt.Sprintf("can't set %q: variable isn't array", name))
				}
				return 0
			}
			arr = make(map[string]uintptr)
			st.arrays[name] = arr
		}
		arr[r.str(part2)] = value
		return value
	}
	if _, isArray := st.arrays[name]; isArray {
		if flags&leaveErrMsg != 0 {
			r.setResult(st, fmt.Sprintf("can't set %q: variable is array", name))
		}
		return 0
	}
	st.vars[name] = value
	return value
}

func (r *Runtime) objGetVar2(interp, part1, part2 uintptr, flags int32) uintptr {
	st := r.interps[interp]
	if st == nil {
		return 0
	}
	name := r.str(part1)
	var (
		v  uintptr
		ok bool
	)
	if part2 != 0 {
		v, ok = st.arrays[name][r.str(part2)]
		name = name + "(" + r.str(part2) + ")"
	} else {
		v, ok = st.vars[name]
	}
	if !ok {
		if flags&leaveErrMsg != 0 {
			r.setResult(st, fmt.Sprintf("can't read %q: no such variable", name))
		}
		return 0
	}
	return v
}

func (r *Runtime) getObjResult(interp uintptr) uintptr {
	st := r.interps[interp]
	if st == nil {
		return 0
	}
	if st.result == 0 {
		r.setResult(st, "")
	}
	return st.result
}

func (r *Runtime) setObjResult(interp, obj uintptr) {
	if st := r.interps[interp]; st != nil && r.objs[obj] != nil {
		st.result = obj
	}
}

func (r *Runtime) setStringObj(obj uintptr, bytes string, length int32) {
	if o := r.objs[obj]; o != nil {
		o.s = prefix(bytes, length)
		o.buf = nil
	}
}

func (r *Runtime) newStringObj(bytes string, length int32) uintptr {
	return r.newObj(prefix(bytes, length))
}

func (r *Runtime) newLongObj(value binding.CLong) uintptr {
	return r.newObj(strconv.FormatInt(int64(value), 10))
}

func (r *Runtime) setIntObj(obj uintptr, value int32) {
	if o := r.objs[obj]; o != nil {
		o.s = strconv.FormatInt(int64(value), 10)
		o.buf = nil
	}
}

func (r *Runtime) getIntFromObj(interp, obj uintptr, out *int32) int32 {
	s := r.str(obj)
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
	if err != nil || r.objs[obj] == nil {
		r.conversionError(interp, "expected integer but got %q", s)
		return Error
	}
	*out = int32(v)
	return OK
}

func (r *Runtime) getLongFromObj(interp, obj uintptr, out *binding.CLong) int32 {
	s := r.str(obj)
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil || r.objs[obj] == nil {
		r.conversionError(interp, "expected integer but got %q", s)
		return Error
	}
	*out = binding.CLong(v)
	return OK
}

func (r *Runtime) getDoubleFromObj(interp, obj uintptr, out *float64) int32 {
	s := r.str(obj)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || r.objs[obj] == nil {
		r.conversionError(interp, "expected floating-point number but got %q", s)
		return Error
	}
	*out = v
	return OK
}

func (r *Runtime) conversionError(interp uintptr, format string, s string) {
	if st := r.interps[interp]; st != nil {
		r.setResult(st, fmt.Sprintf(format, s))
	}
}

func (r *Runtime) getStringFromObj(obj uintptr, length *int32) unsafe.Pointer {
	o := r.objs[obj]
	if o == nil {
		return nil
	}
	if o.buf == nil {
		o.buf = append([]byte(o.s), 0)
	}
	if length != nil {
		*length = int32(len(o.s))
	}
	return unsafe.Pointer(&o.buf[0])
}

// Interps returns the number of live interpreters.
func (r *Runtime) Interps() int {
	return len(r.interps)
}

// HasCommand reports whether name is registered in interp.
func (r *Runtime) HasCommand(interp uintptr, name string) bool {
	st := r.interps[interp]
	return st != nil && st.cmds[name] != nil
}

// Var returns the string value of a scalar variable in interp.
func (r *Runtime) Var(interp uintptr, name string) (string, bool) {
	st := r.interps[interp]
	if st == nil {
		return "", false
	}
	v, ok := st.vars[name]
	return r.str(v), ok
}

// Result returns the string value of the interpreter result.
func (r *Runtime) Result(interp uintptr) string {
	return r.str(r.getObjResult(interp))
}

// Invoke calls the registered command name with exactly objv, which need
// not start with the command word. It allows arities a script cannot express.
func (r *Runtime) Invoke(interp uintptr, name string, objv ...string) int32 {
	st := r.interps[interp]
	if st == nil {
		return Error
	}
	e := st.cmds[name]
	if e == nil {
		r.setResult(st, fmt.Sprintf("invalid command name %q", name))
		return Error
	}
	return r.call(interp, st, e, objv)
}

func (r *Runtime) call(interp uintptr, st *interpState, e *cmdEntry, args []string) int32 {
	if e.proc != procAddr || r.dispatch == nil {
		r.setResult(st, "cannot invoke native command procedure")
		return Error
	}
	r.setResult(st, "")
	objv := make([]uintptr, len(args))
	for i, a := range args {
		objv[i] = r.newObj(a)
	}
	return r.dispatch(e.clientData, interp, objv)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
