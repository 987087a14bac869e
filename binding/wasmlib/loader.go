package wasmlib

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/tcl-runtime/binding"
	"github.com/wippyai/tcl-runtime/errors"
)

// FileName is the default module file name.
const FileName = "tcl.wasm"

const (
	hostModule       = "tcl_host"
	objCmdExport     = "tcl_host_objcmd_proc"
	cmdDeleteExport  = "tcl_host_cmddelete_proc"
	wasm32InterpSize = 12
)

// Config holds configuration for the wasm backend.
type Config struct {
	// Stdout and Stderr receive the guest's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// Logger overrides binding.Logger() for trap reports.
	Logger *zap.Logger

	// MemoryLimitPages caps guest memory in 64KiB pages. 0 means the wazero default.
	MemoryLimitPages uint32
}

type loader struct {
	cfg Config
}

// NewLoader returns a binding.Loader for WebAssembly Tcl modules.
func NewLoader(cfg *Config) binding.Loader {
	l := loader{}
	if cfg != nil {
		l.cfg = *cfg
	}
	return l
}

func (loader) DefaultFileName() string {
	return FileName
}

func (l loader) Open(path string) (binding.Library, error) {
	ctx := context.Background()

	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if l.cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(l.cfg.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	lib := &Library{path: path, runtime: r, cfg: l.cfg}
	if err := lib.instantiate(ctx, wasmBytes); err != nil {
		_ = r.Close(ctx)
		return nil, err
	}
	return lib, nil
}

// Library is an instantiated Tcl module.
type Library struct {
	runtime wazero.Runtime
	mod     api.Module
	guest   *guest
	cmd     binding.ObjCmdFunc
	del     binding.CmdDeleteFunc
	path    string
	cfg     Config
}

func (l *Library) instantiate(ctx context.Context, wasmBytes []byte) error {
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, l.runtime); err != nil {
		return fmt.Errorf("instantiate WASI: %w", err)
	}

	_, err := l.runtime.NewHostModuleBuilder(hostModule).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(l.objCmd),
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32},
			[]api.ValueType{api.ValueTypeI32}).
		Export("objcmd").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(l.cmdDelete),
			[]api.ValueType{api.ValueTypeI32}, nil).
		Export("cmd_delete").
		Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("instantiate %s: %w", hostModule, err)
	}

	compiled, err := l.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName("tcl").
		WithStartFunctions("_initialize")
	if l.cfg.Stdout != nil {
		modCfg = modCfg.WithStdout(l.cfg.Stdout)
	}
	if l.cfg.Stderr != nil {
		modCfg = modCfg.WithStderr(l.cfg.Stderr)
	}

	mod, err := l.runtime.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return fmt.Errorf("instantiate failed: %w", err)
	}
	l.mod = mod

	mem := mod.Memory()
	if mem == nil {
		return fmt.Errorf("module does not export memory")
	}
	for _, name := range []string{"malloc", "free"} {
		if mod.ExportedFunction(name) == nil {
			return fmt.Errorf("module does not export %s", name)
		}
	}

	l.guest = &guest{
		ctx:    ctx,
		mem:    mem,
		export: l.export,
		logger: l.logger,
	}
	return nil
}

// export looks a function up on every call so that calls nested inside a
// command callback get their own call stack.
func (l *Library) export(name string) function {
	fn := l.mod.ExportedFunction(name)
	if fn == nil {
		return nil
	}
	return fn
}

func (l *Library) logger() *zap.Logger {
	if l.cfg.Logger != nil {
		return l.cfg.Logger
	}
	return binding.Logger()
}

// Path returns the module file.
func (l *Library) Path() string {
	return l.path
}

// Bind lowers the function type fnPtr points to onto the export named symbol.
func (l *Library) Bind(symbol string, fnPtr any) error {
	v := reflect.ValueOf(fnPtr)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Func {
		return errors.TypeMismatch(errors.PhaseBind, fmt.Sprintf("%T", fnPtr), "want pointer to func")
	}

	def := l.mod.ExportedFunctionDefinitions()[symbol]
	if def == nil {
		return errors.SymbolNotFound(symbol, nil)
	}

	sig, err := lower(v.Elem().Type())
	if err != nil {
		return errors.New(errors.PhaseBind, errors.KindTypeMismatch).
			GoType(v.Elem().Type().String()).
			Detail("%s: %v", symbol, err).
			Build()
	}
	if err := sig.check(def.ParamTypes(), def.ResultTypes()); err != nil {
		return errors.New(errors.PhaseBind, errors.KindTypeMismatch).
			GoType(v.Elem().Type().String()).
			Detail("%s: %v", symbol, err).
			Build()
	}

	v.Elem().Set(l.guest.bindFunc(symbol, sig, func(ctx context.Context, params ...uint64) ([]uint64, error) {
		fn := l.export(symbol)
		if fn == nil {
			return nil, fmt.Errorf("export %s disappeared", symbol)
		}
		return fn.Call(ctx, params...)
	}))
	return nil
}

// Callbacks returns the guest table indices of the command shims.
func (l *Library) Callbacks(cmd binding.ObjCmdFunc, del binding.CmdDeleteFunc) (uintptr, uintptr, error) {
	cmdProc, err := l.tableIndex(objCmdExport)
	if err != nil {
		return 0, 0, err
	}
	deleteProc, err := l.tableIndex(cmdDeleteExport)
	if err != nil {
		return 0, 0, err
	}
	l.cmd, l.del = cmd, del
	return cmdProc, deleteProc, nil
}

func (l *Library) tableIndex(export string) (uintptr, error) {
	fn := l.mod.ExportedFunction(export)
	if fn == nil {
		return 0, errors.Unsupported(errors.PhaseHost, "module does not export "+export)
	}
	res, err := fn.Call(l.guest.ctx)
	if err != nil {
		return 0, errors.Trap(export, err)
	}
	if len(res) != 1 || res[0] == 0 {
		return 0, errors.InvalidInput(errors.PhaseHost, export+" returned no table index")
	}
	return uintptr(api.DecodeU32(res[0])), nil
}

func (l *Library) objCmd(_ context.Context, m api.Module, stack []uint64) {
	clientData := uintptr(api.DecodeU32(stack[0]))
	interp := uintptr(api.DecodeU32(stack[1]))
	objc := api.DecodeI32(stack[2])
	objvPtr := api.DecodeU32(stack[3])

	if l.cmd == nil || objc < 0 {
		stack[0] = api.EncodeI32(1)
		return
	}

	objv, ok := readObjv(m.Memory(), objvPtr, objc)
	if !ok {
		l.logger().Warn("tcl command objv out of bounds",
			zap.Uint32("objv", objvPtr), zap.Int32("objc", objc))
		stack[0] = api.EncodeI32(1)
		return
	}
	stack[0] = api.EncodeI32(l.cmd(clientData, interp, objv))
}

// readObjv reads objc guest pointers at objvPtr. The whole vector is
// bounds-checked before anything is allocated.
func readObjv(mem memory, objvPtr uint32, objc int32) ([]uintptr, bool) {
	if objc < 0 || uint64(objvPtr)+uint64(objc)*4 > uint64(mem.Size()) {
		return nil, false
	}
	objv := make([]uintptr, objc)
	for i := range objv {
		v, ok := mem.ReadUint32Le(objvPtr + uint32(i)*4)
		if !ok {
			return nil, false
		}
		objv[i] = uintptr(v)
	}
	return objv, true
}

func (l *Library) cmdDelete(_ context.Context, _ api.Module, stack []uint64) {
	if l.del != nil {
		l.del(uintptr(api.DecodeU32(stack[0])))
	}
}

// InterpSize returns the size of the public Tcl_Interp prefix on wasm32.
func (l *Library) InterpSize() int {
	return wasm32InterpSize
}

// Close releases the wazero runtime and everything instantiated in it.
func (l *Library) Close() error {
	return l.runtime.Close(context.Background())
}
