package interp

import (
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/tcl-runtime/binding"
	"github.com/wippyai/tcl-runtime/errors"
)

// IDVar is the global variable holding an interpreter's identifier.
const IDVar = "__id__"

// Interp wraps one Tcl interpreter created from a Binding.
//
// An Interp is live while its binding is bound and it holds an interpreter
// handle; otherwise it is dead and every operation returns BootstrapFail
// without calling into the library. A dead Interp never becomes live.
// Interp is not safe for concurrent use.
type Interp struct {
	b      *binding.Binding
	log    *zap.Logger
	err    error
	handle uintptr
	id     uint32
}

// Bootstrap binds the default library if necessary and creates an
// interpreter carrying id. It never returns nil; on failure the returned
// Interp is dead.
func Bootstrap(id uint32) *Interp {
	return BootstrapWith(binding.Default(), id)
}

// BootstrapWith is Bootstrap against a specific binding.
func BootstrapWith(b *binding.Binding, id uint32) *Interp {
	ip := &Interp{b: b, id: id, log: loggerFor(b)}

	if err := b.EnsureBound(); err != nil {
		ip.err = err
		ip.log.Info("failed to allocate a tcl interpreter", zap.Uint32("id", id), zap.Error(err))
		return ip
	}

	h := b.API().CreateInterp()
	if h == 0 {
		ip.err = errors.New(errors.PhaseRuntime, errors.KindNotInitialized).
			Detail("Tcl_CreateInterp returned a null interpreter").
			Build()
		ip.log.Info("failed to allocate a tcl interpreter", zap.Uint32("id", id))
		return ip
	}
	ip.handle = h

	if st := ip.RegisterID(id); st != OK {
		ip.log.Warn("register tcl interpreter id", zap.Uint32("id", id), zap.Stringer("status", st))
	}
	ip.log.Info("allocated tcl interpreter", zap.Int("bytes", b.InterpSize()), zap.Uint32("id", id))
	return ip
}

// Alive reports whether the interpreter can be used.
func (ip *Interp) Alive() bool {
	return ip != nil && ip.handle != 0 && ip.b.Bound()
}

// BootstrapErr returns why the interpreter could not be created, or nil if
// bootstrap succeeded. It stays nil after Close.
func (ip *Interp) BootstrapErr() error {
	return ip.err
}

// Handle returns the raw Tcl_Interp pointer, or 0 when dead.
func (ip *Interp) Handle() uintptr {
	return ip.handle
}

// Binding returns the binding the interpreter was created from.
func (ip *Interp) Binding() *binding.Binding {
	return ip.b
}

// Close deletes the interpreter, releasing every command registered on
// it, and makes ip dead. Closing a dead interpreter is a no-op.
func (ip *Interp) Close() error {
	if !ip.Alive() {
		return nil
	}
	api := ip.b.API()
	h := ip.handle
	ip.handle = 0
	if !api.Has(binding.OpDeleteInterp) {
		ip.log.Debug("tcl library does not export Tcl_DeleteInterp; interpreter kept until exit", zap.Uint32("id", ip.id))
		return nil
	}
	api.DeleteInterp(h)
	return nil
}

// Eval evaluates script and returns the runtime's completion code.
func (ip *Interp) Eval(script string) Status {
	if !ip.Alive() {
		return BootstrapFail
	}
	return Status(ip.b.API().Eval(ip.handle, script))
}

// EvalFile reads path on the host and evaluates its contents.
func (ip *Interp) EvalFile(path string) Status {
	if !ip.Alive() {
		return BootstrapFail
	}
	script, err := os.ReadFile(path)
	if err != nil {
		ip.log.Info("read tcl script", zap.String("path", path), zap.Error(err))
		ip.SetResult(ip.NewString(err.Error()))
		return Error
	}
	return ip.Eval(string(script))
}

// Err converts st into an error carrying the interpreter result as its message.
func (ip *Interp) Err(st Status) error {
	if st == OK || st == BootstrapFail || st == Unsupported {
		return st.Err()
	}
	msg := st.String()
	if res, rs := ip.Result(); rs == OK {
		if s, ss := ip.String(res); ss == OK && s != "" {
			msg = s
		}
	}
	return errors.Script(int32(st), msg)
}
