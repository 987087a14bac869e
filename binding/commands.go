package binding

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/tcl-runtime/errors"
	"github.com/wippyai/tcl-runtime/resource"
)

// CommandProc handles one invocation of a command registered with CreateCommand.
// objv[0] is the command word; the slice is only valid during the call.
type CommandProc func(interp uintptr, objv []uintptr) int32

type command struct {
	proc     CommandProc
	onDelete func()
	name     string
}

// CreateCommand registers name in interp so that invoking it calls proc.
// onDelete, if set, runs once when the runtime deletes the command, either
// because it was redefined or because the interpreter was deleted.
// It returns the runtime's command token.
func (b *Binding) CreateCommand(interp uintptr, name string, proc CommandProc, onDelete func()) (uintptr, error) {
	api := b.API()
	if api == nil {
		return 0, errors.NotInitialized(errors.PhaseHost, "tcl library")
	}
	if proc == nil {
		return 0, errors.InvalidInput(errors.PhaseHost, "command proc cannot be nil")
	}

	cmdProc, deleteProc, err := b.trampolines()
	if err != nil {
		return 0, errors.Registration(errors.PhaseHost, name, err)
	}

	h := b.commands.Insert(&command{name: name, proc: proc, onDelete: onDelete})

	// The runtime may call the delete trampoline of a command being
	// replaced, so no lock is held here.
	token := api.CreateObjCommand(interp, name, cmdProc, uintptr(h), deleteProc)
	if token == 0 {
		b.commands.Remove(h)
		return 0, errors.Registration(errors.PhaseHost, name, fmt.Errorf("runtime returned no command token"))
	}
	return token, nil
}

// Commands returns the number of live commands registered through CreateCommand.
func (b *Binding) Commands() int {
	return b.commands.Len()
}

func (b *Binding) trampolines() (uintptr, uintptr, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lib == nil {
		return 0, 0, errors.NotInitialized(errors.PhaseHost, "tcl library")
	}
	if b.cmdProc == 0 {
		cmdProc, deleteProc, err := b.lib.Callbacks(b.dispatch, b.release)
		if err != nil {
			return 0, 0, err
		}
		b.cmdProc, b.deleteProc = cmdProc, deleteProc
	}
	return b.cmdProc, b.deleteProc, nil
}

func (b *Binding) dispatch(clientData, interp uintptr, objv []uintptr) (code int32) {
	cmd, ok := b.commands.Get(resource.Handle(clientData))
	if !ok {
		b.logger().Warn("tcl command invoked with stale client data", zap.Uintptr("client_data", clientData))
		return codeError
	}

	// A panic must not unwind through the runtime's C frames.
	defer func() {
		if r := recover(); r != nil {
			b.logger().Error("tcl command panicked", zap.String("command", cmd.name), zap.Any("panic", r))
			code = codeError
		}
	}()
	return cmd.proc(interp, objv)
}

func (b *Binding) release(clientData uintptr) {
	cmd, ok := b.commands.Remove(resource.Handle(clientData))
	if !ok || cmd.onDelete == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger().Error("tcl command delete hook panicked", zap.String("command", cmd.name), zap.Any("panic", r))
		}
	}()
	cmd.onDelete()
}

func (b *Binding) onCommandEvent(e resource.Event) {
	cmd, _ := e.Value.(*command)
	if cmd == nil {
		return
	}
	switch e.Type {
	case resource.EventCreated:
		b.logger().Debug("tcl command registered", zap.String("command", cmd.name), zap.Uint32("handle", uint32(e.Handle)))
	case resource.EventDropped:
		b.logger().Debug("tcl command released", zap.String("command", cmd.name), zap.Uint32("handle", uint32(e.Handle)))
	}
}
