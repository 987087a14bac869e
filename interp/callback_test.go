package interp

import (
	"errors"
	"strings"
	"testing"
)

type recorder struct {
	hello int
	xs    []float64
	ys    []float64
}

func (r *recorder) Hello() {
	r.hello++
}

func (r *recorder) Hello2(x, y float64) {
	r.xs = append(r.xs, x)
	r.ys = append(r.ys, y)
}

func TestBindCallbackArity(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 1)
	rec := &recorder{}

	if st := ip.BindHost("moveToLoc", rec); st != OK {
		t.Fatalf("BindHost: %v", st)
	}

	tests := []struct {
		name string
		objv []string
	}{
		{"0 tokens", nil},
		{"1 token", []string{"moveToLoc"}},
		{"2 tokens", []string{"moveToLoc", "1"}},
		{"4 tokens", []string{"moveToLoc", "1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := f.rt.Invoke(ip.Handle(), "moveToLoc", tt.objv...); code != int32(Error) {
				t.Fatalf("Expected TCL_ERROR, got %d", code)
			}
			if got := f.rt.Result(ip.Handle()); got != `wrong # args: should be "moveToLoc x y"` {
				t.Fatalf("Expected arity message, got %q", got)
			}
		})
	}

	if rec.hello != 0 || len(rec.xs) != 0 {
		t.Fatal("Expected no delegate calls on arity errors")
	}
	if n := f.logs.FilterMessage("wrong # of args").Len(); n != len(tests) {
		t.Fatalf("Expected %d arity logs, got %d", len(tests), n)
	}
}

func TestBindCallbackConversionError(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 1)
	rec := &recorder{}
	ip.BindHost("moveToLoc", rec)

	for _, script := range []string{"moveToLoc abc 1", "moveToLoc 1 abc"} {
		if st := ip.Eval(script); st != Error {
			t.Fatalf("%s: expected Error, got %v", script, st)
		}
		if got := f.rt.Result(ip.Handle()); got != `expected floating-point number but got "abc"` {
			t.Fatalf("%s: expected conversion message, got %q", script, got)
		}
	}
	if rec.hello != 0 || len(rec.xs) != 0 {
		t.Fatal("Expected no delegate calls on conversion errors")
	}
}

func TestBindCallbackSuccess(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 1)
	rec := &recorder{}
	ip.BindHost("moveToLoc", rec)

	if st := ip.Eval("moveToLoc 1.5 -2"); st != OK {
		t.Fatalf("Expected OK, got %v: %v", st, ip.Err(st))
	}
	if code := f.rt.Invoke(ip.Handle(), "moveToLoc", "moveToLoc", "3", "4e1"); code != int32(OK) {
		t.Fatalf("Expected TCL_OK, got %d", code)
	}

	if rec.hello != 2 {
		t.Fatalf("Expected hello twice, got %d", rec.hello)
	}
	if len(rec.xs) != 2 || rec.xs[0] != 1.5 || rec.ys[0] != -2 || rec.xs[1] != 3 || rec.ys[1] != 40 {
		t.Fatalf("Expected forwarded coordinates, got xs=%v ys=%v", rec.xs, rec.ys)
	}
}

func TestBindCallbackDelegates(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 1)

	d := NewDelegates()
	var sum float64
	d.RegisterFunc("add", func(x, y float64) { sum = x + y })
	d.RegisterFunc("fail", func(x, y float64) error {
		if x < 0 {
			return errors.New("negative x")
		}
		return nil
	})

	if st := ip.BindCallback("calc", d, "add", "missing", "fail"); st != OK {
		t.Fatalf("BindCallback: %v", st)
	}
	if st := ip.Eval("calc 2 3"); st != OK {
		t.Fatalf("Expected OK, got %v", st)
	}
	if sum != 5 {
		t.Fatalf("Expected sum 5, got %v", sum)
	}

	if st := ip.Eval("calc -1 3"); st != Error {
		t.Fatalf("Expected Error from failing delegate, got %v", st)
	}
	if got := f.rt.Result(ip.Handle()); !strings.Contains(got, "negative x") {
		t.Fatalf("Expected delegate error in result, got %q", got)
	}
}

func TestBindCallbackNilDispatcher(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 1)
	if st := ip.BindCallback("c", nil); st != Error {
		t.Fatalf("Expected Error, got %v", st)
	}
	if st := ip.BindHost("c", nil); st != Error {
		t.Fatalf("Expected Error, got %v", st)
	}
}

func TestRegisterCommand(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 1)

	st := ip.RegisterCommand("double", func(ip *Interp, objv []Obj) (Obj, Status) {
		if len(objv) != 2 {
			return ip.NewString("usage: double n"), Error
		}
		n, st := ip.ToLong(objv[1])
		if st != OK {
			return 0, st
		}
		return ip.NewLong(n * 2), OK
	}, nil)
	if st != OK {
		t.Fatalf("RegisterCommand: %v", st)
	}

	if st := ip.Eval("double 21"); st != OK {
		t.Fatalf("Expected OK, got %v", st)
	}
	if got := f.rt.Result(ip.Handle()); got != "42" {
		t.Fatalf("Expected 42, got %q", got)
	}
	if st := ip.Eval("double"); st != Error {
		t.Fatalf("Expected Error, got %v", st)
	}
	if got := f.rt.Result(ip.Handle()); got != "usage: double n" {
		t.Fatalf("Expected usage, got %q", got)
	}

	if st := ip.RegisterCommand("nil", nil, nil); st != Error {
		t.Fatalf("Expected Error for nil func, got %v", st)
	}
}

func TestRegisterCommandStatusPassthrough(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 1)

	ip.RegisterCommand("stop", func(*Interp, []Obj) (Obj, Status) { return 0, Break }, nil)
	if st := ip.Eval("stop"); st != Break {
		t.Fatalf("Expected Break, got %v", st)
	}
}

func TestCreateObjCommand(t *testing.T) {
	f := newFixture(t, true)
	ip := f.bootstrap(t, 1)

	if st := ip.CreateObjCommand("raw", 0, 0, 0); st != Error {
		t.Fatalf("Expected Error for null proc, got %v", st)
	}
	if st := ip.CreateObjCommand("raw", 0x1234, 0, 0); st != OK {
		t.Fatalf("Expected OK, got %v", st)
	}
	if !f.rt.HasCommand(ip.Handle(), "raw") {
		t.Fatal("Expected command to be registered")
	}
}
