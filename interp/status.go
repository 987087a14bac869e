package interp

import (
	"fmt"

	"github.com/wippyai/tcl-runtime/errors"
)

// Status is the result code of every façade operation. Values 0 through 4
// are the runtime's own completion codes and are passed through unchanged.
type Status int32

const (
	OK       Status = 0
	Error    Status = 1
	Return   Status = 2
	Break    Status = 3
	Continue Status = 4

	// BootstrapFail is returned by every operation on a dead interpreter.
	BootstrapFail Status = -1

	// Unsupported is returned by operations whose optional entry point the
	// library does not export.
	Unsupported Status = -2

	// UnsupportedType is returned by Convert for a type with no reader. It
	// shares its value with OK; the zero value that accompanies it is not a
	// conversion result.
	UnsupportedType Status = 0
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Error:
		return "error"
	case Return:
		return "return"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case BootstrapFail:
		return "bootstrap-fail"
	case Unsupported:
		return "unsupported"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// Err converts s into an error, or nil for OK.
// Interp.Err additionally carries the interpreter result as the message.
func (s Status) Err() error {
	switch s {
	case OK:
		return nil
	case BootstrapFail:
		return errors.NotInitialized(errors.PhaseRuntime, "tcl interpreter")
	case Unsupported:
		return errors.Unsupported(errors.PhaseRuntime, "operation not supported by the bound library")
	}
	return errors.Script(int32(s), s.String())
}

// VarFlags are passed verbatim to Tcl_ObjSetVar2 and Tcl_ObjGetVar2.
type VarFlags int32

const (
	GlobalOnly    VarFlags = 1
	NamespaceOnly VarFlags = 2
	AppendValue   VarFlags = 4
	ListElement   VarFlags = 8
	LeaveErrMsg   VarFlags = 0x200
)
