package binding

import (
	"strings"
	"testing"
)

func TestRequiredSymbols(t *testing.T) {
	want := []string{
		"Tcl_CreateInterp",
		"Tcl_Eval",
		"Tcl_CreateObjCommand",
		"Tcl_ObjSetVar2",
		"Tcl_ObjGetVar2",
		"Tcl_GetObjResult",
		"Tcl_SetStringObj",
		"Tcl_NewStringObj",
		"Tcl_NewLongObj",
		"Tcl_SetIntObj",
		"Tcl_GetIntFromObj",
		"Tcl_GetLongFromObj",
		"Tcl_GetDoubleFromObj",
	}
	got := RequiredSymbols()
	if len(got) != len(want) {
		t.Fatalf("Expected %d required symbols, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symbol %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSymbolsCoverEveryOp(t *testing.T) {
	api := &API{}
	seen := make(map[Op]bool)
	for _, s := range api.Symbols() {
		if seen[s.Op] {
			t.Fatalf("duplicate op %v", s.Op)
		}
		seen[s.Op] = true
		if !strings.HasPrefix(s.Name, "Tcl_") {
			t.Errorf("unexpected symbol name %q", s.Name)
		}
	}
	for op := Op(0); op < opCount; op++ {
		if !seen[op] {
			t.Errorf("op %v has no symbol", op)
		}
	}
}

func TestAPIHas(t *testing.T) {
	var nilAPI *API
	if nilAPI.Has(OpEval) {
		t.Fatal("Expected nil API to have nothing")
	}

	api := &API{}
	if api.Has(OpEval) {
		t.Fatal("Expected empty API to have nothing")
	}
	api.Eval = func(uintptr, string) int32 { return 0 }
	if !api.Has(OpEval) {
		t.Fatal("Expected Has after assignment")
	}
	if api.Has(Op(99)) {
		t.Fatal("Expected unknown op to be absent")
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreateInterp, "create-interp"},
		{OpObjSetVar2, "obj-set-var2"},
		{OpGetStringFromObj, "get-string-from-obj"},
		{Op(-1), "unknown"},
		{opCount, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

type sizedLib struct {
	Library
}

func (sizedLib) InterpSize() int { return 12 }

func TestInterpSize(t *testing.T) {
	if got := interpSize(sizedLib{}); got != 12 {
		t.Fatalf("Expected sizer to win, got %d", got)
	}
	if got := interpSize(nil); got < 12 {
		t.Fatalf("Expected host header size, got %d", got)
	}
}
