// Package interp is the interpreter façade over a bound Tcl library.
//
// # Quick Start
//
//	ip := interp.Bootstrap(7)
//	defer ip.Close()
//
//	if st := ip.Eval("set x 5"); st != interp.OK {
//	    log.Fatal(ip.Err(st))
//	}
//	x, _ := ip.GetVar("x", "", interp.GlobalOnly)
//	n, _ := ip.ToInt(x) // 5
//
// # Liveness
//
// Bootstrap never fails outright. When the library is missing, cannot be
// loaded, or lacks a required entry point, the returned Interp is dead:
// every operation returns BootstrapFail without calling into the library.
// A later Bootstrap may succeed once the library is in place.
//
// # Status Codes
//
//	OK, Error, Return, Break, Continue  runtime completion codes, passed through
//	BootstrapFail                       dead interpreter
//	Unsupported                         an optional entry point is missing
//	UnsupportedType                     no reader for a Convert type (same value as OK)
//
// Interp.Err turns a status into an error carrying the interpreter result.
//
// # Identifier
//
// Each interpreter is stamped with a uint32 identifier stored in the global
// variable __id__. RegisterID and ID write and read it.
//
// # Commands
//
// RegisterCommand registers a Go function as a Tcl command; CreateObjCommand
// registers a native Tcl_ObjCmdProc unchanged. BindCallback registers the
// two-number command "name x y" that forwards its arguments to host
// delegates through a Dispatcher:
//
//	type Player struct{}
//
//	func (p *Player) Hello(x, y float64) { ... }
//
//	ip.BindHost("moveToLoc", &Player{})
//	ip.Eval("moveToLoc 1.5 2") // calls Hello(1.5, 2)
//
// Delegates registers methods under kebab-case names, so Hello becomes
// "hello" and Hello2 becomes "hello2", the names BindCallback runs by default.
package interp
