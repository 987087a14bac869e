// Package wasmlib hosts a Tcl library compiled to WebAssembly.
//
// The library is expected as a WASI reactor (tcl.wasm) exporting the same
// Tcl_* entry points as the native library, plus memory, malloc and free.
// It is run by wazero with wasi_snapshot_preview1 instantiated, so no
// native code is loaded into the process.
//
// # Calling Convention
//
// Bound Go signatures are lowered to wasm32:
//
//	uintptr, int32, C long   -> i32
//	float64                  -> f64
//	string                   -> i32 pointer to a NUL-terminated copy
//	*int32, *CLong, *float64 -> i32 pointer to guest scratch, read back after the call
//	unsafe.Pointer result    -> NUL-terminated string copied into Go memory
//
// Guest memory allocated for a call is freed when the call returns.
//
// # Commands
//
// The module may import two host functions from the "tcl_host" module:
//
//	objcmd(clientData, interp, objc, objv i32) i32
//	cmd_delete(clientData i32)
//
// and export tcl_host_objcmd_proc and tcl_host_cmddelete_proc, which return
// the function-table indices of C shims forwarding to them. Those indices
// are the command and delete procedures handed to Tcl_CreateObjCommand.
// A module without these exports can still evaluate scripts; only
// Go-level command registration is unavailable.
//
// # Traps
//
// A trap inside a bound call is logged. Calls returning a status report
// TCL_ERROR and calls returning a handle report 0.
//
// A Library is not safe for concurrent use, matching a Tcl interpreter.
package wasmlib
