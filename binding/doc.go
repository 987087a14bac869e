// Package binding loads a Tcl shared library at run time and resolves the
// entry points the interpreter façade needs.
//
// # Architecture
//
// One Binding holds the process-wide state for one library:
//
//	Binding   - library handle, resolved API table, command trampolines
//	API       - typed Go function fields, one per bound entry point
//	Loader    - opens a library file (NativeLoader, wasmlib.NewLoader)
//	Library   - resolves symbols into API fields and creates callbacks
//
// Interpreters are created by package interp; they share the Binding's API
// table but own their interpreter handle.
//
// # Bootstrap
//
// EnsureBound is idempotent and serialized by a mutex:
//
//  1. If already bound, return immediately.
//  2. Stat Dir/ThirdParty/FileName; missing file is a load/not_found error.
//  3. Open it with the Loader; failure is a load/load_failed error.
//  4. Resolve every row of API.Symbols(). If any required symbol is
//     missing the library is closed, the Binding stays unbound and a
//     *errors.MissingSymbolsError lists the missing names.
//
// Each outcome is logged as a single Info line. A failed attempt may be
// retried, for example after the library has been installed.
//
// # Entry Points
//
// The thirteen required symbols:
//
//	Tcl_CreateInterp      Tcl_Eval              Tcl_CreateObjCommand
//	Tcl_ObjSetVar2        Tcl_ObjGetVar2        Tcl_GetObjResult
//	Tcl_SetStringObj      Tcl_NewStringObj      Tcl_NewLongObj
//	Tcl_SetIntObj         Tcl_GetIntFromObj     Tcl_GetLongFromObj
//	Tcl_GetDoubleFromObj
//
// Optional symbols (Tcl_DeleteInterp, Tcl_SetObjResult,
// Tcl_GetStringFromObj) are bound when present; API.Has reports them.
// Names are matched exactly and signatures are not validated beyond the
// presence of the symbol.
//
// # Commands
//
// CreateCommand registers a Go CommandProc. The runtime receives a single
// shared Tcl_ObjCmdProc trampoline plus a clientData word that is a handle
// into the Binding's command table, never a Go pointer. The matching
// Tcl_CmdDeleteProc trampoline removes the entry when the runtime deletes
// the command.
//
// # Native Backend
//
// NativeLoader uses purego (dlopen/dlsym) on Linux, macOS and FreeBSD and
// LoadLibrary on Windows. No cgo is required.
//
// # Thread Safety
//
// Binding is safe for concurrent use. The Tcl runtime itself is not:
// an interpreter must only be used from one goroutine at a time.
package binding
