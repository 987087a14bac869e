package binding

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/tcl-runtime/errors"
	"github.com/wippyai/tcl-runtime/resource"
)

const (
	codeOK    int32 = 0
	codeError int32 = 1
)

// Binding is the process-scoped state of one Tcl library: the opened
// library, the resolved entry points and the command table shared by every
// interpreter created from it.
//
// A Binding is either bound (library open, every required symbol resolved)
// or unbound. A failed attempt leaves it unbound and may be retried.
// Once bound it stays bound for the life of the process.
type Binding struct {
	opts        Options
	lib         Library
	api         *API
	commands    *resource.Table[*command]
	cmdProc     uintptr
	deleteProc  uintptr
	interpSize  int
	resolutions int
	mu          sync.RWMutex
}

// New creates an unbound binding.
func New(opts Options) *Binding {
	b := &Binding{
		opts:     opts.withDefaults(),
		commands: resource.NewTable[*command](),
	}
	b.commands.Subscribe(resource.ObserverFunc(b.onCommandEvent))
	return b
}

var defaultBinding = sync.OnceValue(func() *Binding {
	return New(Options{})
})

// Default returns the process-wide binding used by interp.Bootstrap.
func Default() *Binding {
	return defaultBinding()
}

// Configure replaces the options of an unbound binding.
func (b *Binding) Configure(opts Options) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lib != nil {
		return errors.InvalidInput(errors.PhaseLoad, "binding already bound to "+b.lib.Path())
	}
	b.opts = opts.withDefaults()
	return nil
}

// Options returns the effective options.
func (b *Binding) Options() Options {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.opts
}

func (b *Binding) logger() *zap.Logger {
	if b.opts.Logger != nil {
		return b.opts.Logger
	}
	return Logger()
}

// EnsureBound loads the library and resolves every entry point unless that
// already happened. Concurrent callers are serialized.
func (b *Binding) EnsureBound() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lib != nil {
		return nil
	}

	log := b.logger()
	path := b.opts.Path()

	if _, err := os.Stat(path); err != nil {
		log.Info("tcl library not found", zap.String("path", path))
		return errors.LibraryNotFound(path, err)
	}

	lib, err := b.opts.Loader.Open(path)
	if err != nil {
		log.Info("tcl bootstrapping failed", zap.String("path", path), zap.Error(err))
		return errors.LoadFailed(path, err)
	}

	api := &API{}
	var missing []string
	for _, s := range api.Symbols() {
		if err := lib.Bind(s.Name, s.Fn); err != nil {
			if s.Optional {
				log.Debug("optional tcl symbol unavailable", zap.String("symbol", s.Name), zap.Error(err))
				continue
			}
			missing = append(missing, s.Name)
		}
	}

	if len(missing) > 0 {
		log.Info("bootstrapping one or more functions for tcl failed",
			zap.String("path", path), zap.Strings("missing", missing))
		if err := lib.Close(); err != nil {
			log.Debug("close partially bound library", zap.Error(err))
		}
		return errors.NewMissingSymbolsError(path, missing)
	}

	b.lib = lib
	b.api = api
	b.interpSize = interpSize(lib)
	b.resolutions++
	log.Info("bootstrapping tcl and its functions succeeded",
		zap.String("path", path), zap.Int("symbols", len(api.Symbols())))
	return nil
}

// Bound reports whether the library is loaded and every required symbol resolved.
func (b *Binding) Bound() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lib != nil
}

// API returns the resolved entry points, or nil while unbound.
// The returned table is never modified after binding.
func (b *Binding) API() *API {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.api
}

// InterpSize returns the byte size of the public interpreter structure, for diagnostics.
func (b *Binding) InterpSize() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.interpSize
}

// Resolutions returns how many times symbol resolution completed successfully.
func (b *Binding) Resolutions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.resolutions
}

// Path returns the library path in use, or the expected path while unbound.
func (b *Binding) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.lib != nil {
		return b.lib.Path()
	}
	return b.opts.Path()
}

func (b *Binding) String() string {
	return fmt.Sprintf("binding(%s, bound=%t)", b.Path(), b.Bound())
}
