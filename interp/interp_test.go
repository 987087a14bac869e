package interp

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/tcl-runtime/binding"
	tclerrors "github.com/wippyai/tcl-runtime/errors"
	"github.com/wippyai/tcl-runtime/internal/faketcl"
)

type fixture struct {
	b    *binding.Binding
	rt   *faketcl.Runtime
	logs *observer.ObservedLogs
	dir  string
}

func newFixture(t *testing.T, install bool) *fixture {
	t.Helper()
	f := &fixture{rt: faketcl.New(), dir: t.TempDir()}
	if install {
		f.install(t)
	}
	core, logs := observer.New(zapcore.DebugLevel)
	f.logs = logs
	f.b = binding.New(binding.Options{
		Loader: f.rt.Loader(),
		Logger: zap.New(core),
		Dir:    f.dir,
	})
	return f
}

func (f *fixture) install(t *testing.T) {
	t.Helper()
	if _, err := faketcl.Install(f.dir); err != nil {
		t.Fatalf("Install: %v", err)
	}
}

func (f *fixture) bootstrap(t *testing.T, id uint32) *Interp {
	t.Helper()
	ip := BootstrapWith(f.b, id)
	if !ip.Alive() {
		t.Fatalf("Expected live interpreter for id %d", id)
	}
	return ip
}

func TestBootstrap_Dead(t *testing.T) {
	f := newFixture(t, false)
	ip := BootstrapWith(f.b, 3)

	if ip == nil {
		t.Fatal("Expected non-nil interpreter")
	}
	if ip.Alive() {
		t.Fatal("Expected dead interpreter")
	}
	if f.b.Bound() {
		t.Fatal("Expected binding to stay unbound")
	}
	if n := f.logs.FilterMessage("tcl library not found").Len(); n != 1 {
		t.Fatalf("Expected exactly one not-found log, got %d", n)
	}
	if n := f.logs.FilterMessage("failed to allocate a tcl interpreter").Len(); n != 1 {
		t.Fatalf("Expected one allocation failure log, got %d", n)
	}

	ops := map[string]func() Status{
		"Eval":             func() Status { return ip.Eval("set x 1") },
		"EvalFile":         func() Status { return ip.EvalFile("/nonexistent.tcl") },
		"CreateObjCommand": func() Status { return ip.CreateObjCommand("c", 1, 0, 0) },
		"RegisterCommand": func() Status {
			return ip.RegisterCommand("c", func(*Interp, []Obj) (Obj, Status) { return 0, OK }, nil)
		},
		"BindCallback": func() Status { return ip.BindCallback("c", NewDelegates()) },
		"BindHost":     func() Status { return ip.BindHost("c", &recorder{}) },
		"SetVar":       func() Status { return ip.SetVar("x", "", 1, GlobalOnly) },
		"GetVar":       func() Status { _, st := ip.GetVar("x", "", GlobalOnly); return st },
		"RegisterID":   func() Status { return ip.RegisterID(1) },
		"ID":           func() Status { _, st := ip.ID(); return st },
		"Result":       func() Status { _, st := ip.Result(); return st },
		"SetResult":    func() Status { return ip.SetResult(1) },
		"SetInt":       func() Status { return ip.SetInt(1, 1) },
		"SetString":    func() Status { return ip.SetString(1, "a", -1) },
		"String":       func() Status { _, st := ip.String(1); return st },
		"ToInt":        func() Status { _, st := ip.ToInt(1); return st },
		"ToLong":       func() Status { _, st := ip.ToLong(1); return st },
		"ToDouble":     func() Status { _, st := ip.ToDouble(1); return st },
		"Convert[int]": func() Status { _, st := Convert[int](ip, 1); return st },
		"Convert[string]": func() Status {
			_, st := Convert[string](ip, 1)
			return st
		},
	}
	for name, op := range ops {
		if st := op(); st != BootstrapFail {
			t.Errorf("%s: expected BootstrapFail, got %v", name, st)
		}
	}

	if ip.NewString("a") != 0 || ip.NewLong(1) != 0 {
		t.Fatal("Expected null objects from a dead interpreter")
	}
	if err := ip.Close(); err != nil {
		t.Fatalf("Close on dead interpreter: %v", err)
	}
	if f.rt.Opens != 0 {
		t.Fatalf("Expected library never opened, got %d", f.rt.Opens)
	}
}

func TestBootstrap_DeadStaysDead(t *testing.T) {
	f := newFixture(t, false)
	ip := BootstrapWith(f.b, 1)

	f.install(t)
	live := f.bootstrap(t, 2)

	if ip.Alive() {
		t.Fatal("Expected earlier dead interpreter to stay dead")
	}
	if st := ip.Eval("set x 1"); st != BootstrapFail {
		t.Fatalf("Expected BootstrapFail, got %v", st)
	}
	if st := live.Eval("set x 1"); st != OK {
		t.Fatalf("Expected OK after retry, got %v", st)
	}
}

func TestBootstrapErr(t *testing.T) {
	t.Run("library missing", func(t *testing.T) {
		f := newFixture(t, false)
		ip := BootstrapWith(f.b, 1)
		err := ip.BootstrapErr()
		if !errors.Is(err, &tclerrors.Error{Phase: tclerrors.PhaseLoad, Kind: tclerrors.KindNotFound}) {
			t.Fatalf("Expected load/not_found, got %v", err)
		}
		if n := f.logs.FilterMessage("tcl library not found").Len(); n != 1 {
			t.Fatalf("Expected one not-found log, got %d", n)
		}
	})

	t.Run("symbol missing", func(t *testing.T) {
		f := newFixture(t, true)
		f.rt.Missing["Tcl_Eval"] = true
		ip := BootstrapWith(f.b, 1)
		var missing *tclerrors.MissingSymbolsError
		if !errors.As(ip.BootstrapErr(), &missing) || len(missing.Symbols) != 1 || missing.Symbols[0] != "Tcl_Eval" {
			t.Fatalf("Expected missing Tcl_Eval, got %v", ip.BootstrapErr())
		}
	})

	t.Run("live", func(t *testing.T) {
		f := newFixture(t, true)
		ip := f.bootstrap(t, 1)
		if err := ip.BootstrapErr(); err != nil {
			t.Fatalf("Expected nil, got %v", err)
		}
		ip.Close()
		if err := ip.BootstrapErr(); err != nil {
			t.Fatalf("Expected nil after Close, got %v", err)
		}
	})
}

func TestBootstrap_Idempotent(t *testing.T) {
	f := newFixture(t, true)
	first := f.bootstrap(t, 1)
	second := f.bootstrap(t, 2)

	if f.b.Resolutions() != 1 || f.rt.Opens != 1 {
		t.Fatalf("Expected one resolution and one open, got %d and %d", f.b.Resolutions(), f.rt.Opens)
	}
	if f.rt.Interps() != 2 {
		t.Fatalf("Expected 2 interpreters, got %d", f.rt.Interps())
	}
	if first.Handle() == second.Handle() {
		t.Fatal("Expected distinct interpreter handles")
	}

	for want, ip := range map[uint32]*Interp{1: first, 2: second} {
		got, st := ip.ID()
		if st != OK || got != want {
			t.Fatalf("Expected id %d, got %d (%v)", want, got, st)
		}
	}

	allocated := f.logs.FilterMessage("allocated tcl interpreter").All()
	if len(allocated) != 2 {
		t.Fatalf("Expected 2 allocation logs, got %d", len(allocated))
	}
	if got := allocated[1].ContextMap()["id"]; got != uint32(2) {
		t.Fatalf("Expected id 2 in log, got %v", got)
	}
}

func TestBootstrap_MissingSymbol(t *testing.T) {
	f := newFixture(t, true)
	f.rt.Missing["Tcl_NewLongObj"] = true

	ip := BootstrapWith(f.b, 1)
	if ip.Alive() {
		t.Fatal("Expected dead interpreter")
	}
	if f.rt.Interps() != 0 {
		t.Fatal("Expected no interpreter to be created")
	}
}

func TestEndToEnd(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 7)
	defer ip.Close()

	if st := ip.Eval("set x 5"); st != OK {
		t.Fatalf("Expected OK, got %v", st)
	}
	x, st := ip.GetVar("x", "", GlobalOnly)
	if st != OK {
		t.Fatalf("GetVar: %v", st)
	}
	n, st := ip.ToInt(x)
	if st != OK || n != 5 {
		t.Fatalf("Expected 5, got %d (%v)", n, st)
	}
	id, st := ip.ID()
	if st != OK || id != 7 {
		t.Fatalf("Expected id 7, got %d (%v)", id, st)
	}
}

func TestEvalStatus(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 1)

	tests := []struct {
		script string
		want   Status
		result string
	}{
		{"set a 1", OK, "1"},
		{"error boom", Error, "boom"},
		{"nosuch 1 2", Error, `invalid command name "nosuch"`},
		{"return done", Return, "done"},
		{"break", Break, ""},
		{"continue", Continue, ""},
		{"set a {two words}; set a", OK, "two words"},
	}
	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			if st := ip.Eval(tt.script); st != tt.want {
				t.Fatalf("Expected %v, got %v", tt.want, st)
			}
			res, _ := ip.Result()
			if s, _ := ip.String(res); s != tt.result {
				t.Fatalf("Expected result %q, got %q", tt.result, s)
			}
		})
	}
}

func TestErr(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 1)

	if err := ip.Err(ip.Eval("set a 1")); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	err := ip.Err(ip.Eval("error {disk full}"))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("Expected script error with message, got %v", err)
	}
}

func TestEvalFile(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 1)

	path := filepath.Join(t.TempDir(), "init.tcl")
	if err := os.WriteFile(path, []byte("# setup\nset y 3\nset z $y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if st := ip.EvalFile(path); st != OK {
		t.Fatalf("Expected OK, got %v: %v", st, ip.Err(st))
	}
	if v, ok := f.rt.Var(ip.Handle(), "z"); !ok || v != "3" {
		t.Fatalf("Expected z=3, got %q", v)
	}

	if st := ip.EvalFile(filepath.Join(t.TempDir(), "missing.tcl")); st != Error {
		t.Fatalf("Expected Error for missing file, got %v", st)
	}
}

func TestClose(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 1)

	deleted := 0
	st := ip.RegisterCommand("probe", func(*Interp, []Obj) (Obj, Status) { return 0, OK }, func() { deleted++ })
	if st != OK {
		t.Fatalf("RegisterCommand: %v", st)
	}

	if err := ip.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if ip.Alive() {
		t.Fatal("Expected interpreter to be dead after Close")
	}
	if f.rt.Interps() != 0 {
		t.Fatalf("Expected interpreter deleted, %d remain", f.rt.Interps())
	}
	if deleted != 1 || f.b.Commands() != 0 {
		t.Fatalf("Expected command released, deleted=%d commands=%d", deleted, f.b.Commands())
	}
	if st := ip.Eval("probe"); st != BootstrapFail {
		t.Fatalf("Expected BootstrapFail after Close, got %v", st)
	}
	if err := ip.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestClose_WithoutDeleteInterp(t *testing.T) {
	f := newFixture(t, true)
	f.rt.Missing["Tcl_DeleteInterp"] = true
	ip := f.bootstrap(t, 1)

	if err := ip.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if ip.Alive() {
		t.Fatal("Expected interpreter to be dead after Close")
	}
	if f.rt.Interps() != 1 {
		t.Fatalf("Expected interpreter to be left to the runtime, got %d", f.rt.Interps())
	}
}
