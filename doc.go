// Package tclruntime embeds a Tcl interpreter in Go by binding the Tcl
// shared library at run time.
//
// Nothing is linked at build time. The library is looked up in a
// ThirdParty directory under a configurable resource directory, opened
// through a pluggable loader and resolved symbol by symbol into a table of
// typed Go functions. Two loaders exist: the native one (dlopen through
// purego, LoadLibrary on Windows) and one that runs a Tcl build compiled to
// WebAssembly under wazero.
//
// # Architecture Overview
//
//	tclruntime/
//	├── binding/          Library location, symbol resolution, command trampolines
//	│   └── wasmlib/      wazero loader for tcl.wasm
//	├── interp/           Interpreter façade: eval, objects, variables, commands
//	├── config/           YAML and .env configuration
//	├── resource/         Handle table for command client data
//	├── errors/           Structured error types
//	└── cmd/tclsh/        Command-line shell
//
// # Quick Start
//
//	binding.Default().Configure(binding.Options{Dir: "/opt/app"})
//
//	ip := interp.Bootstrap(7)
//	if !ip.Alive() {
//	    log.Fatal("tcl not available")
//	}
//	defer ip.Close()
//
//	st := ip.Eval("set greeting hello")
//	if st != interp.OK {
//	    log.Fatal(ip.Err(st))
//	}
//
// # Failure Model
//
// Binding happens once per process and is retried only after a failure.
// An interpreter whose bootstrap failed is dead: every operation on it
// returns interp.BootstrapFail instead of touching the library.
//
// # Thread Safety
//
// Binding is safe for concurrent use. An Interp is NOT: Tcl ties each
// interpreter to the thread that created it, so callers should lock the
// OS thread for the lifetime of the interpreter.
package tclruntime
