package interp

import (
	"errors"
	"testing"

	tclerrors "github.com/wippyai/tcl-runtime/errors"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		st   Status
		want string
	}{
		{OK, "ok"},
		{Error, "error"},
		{Return, "return"},
		{Break, "break"},
		{Continue, "continue"},
		{BootstrapFail, "bootstrap-fail"},
		{Unsupported, "unsupported"},
		{Status(42), "status(42)"},
	}
	for _, tt := range tests {
		if got := tt.st.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", int32(tt.st), got, tt.want)
		}
	}
}

func TestStatusErr(t *testing.T) {
	if OK.Err() != nil {
		t.Fatal("Expected nil error for OK")
	}
	if !errors.Is(BootstrapFail.Err(), &tclerrors.Error{Phase: tclerrors.PhaseRuntime, Kind: tclerrors.KindNotInitialized}) {
		t.Fatalf("Expected not_initialized, got %v", BootstrapFail.Err())
	}
	if !errors.Is(Unsupported.Err(), &tclerrors.Error{Phase: tclerrors.PhaseRuntime, Kind: tclerrors.KindUnsupported}) {
		t.Fatalf("Expected unsupported, got %v", Unsupported.Err())
	}

	var e *tclerrors.Error
	if !errors.As(Error.Err(), &e) || e.Kind != tclerrors.KindScript || e.Value != int32(1) {
		t.Fatalf("Expected script error with code 1, got %v", Error.Err())
	}
}

func TestStatusDistinct(t *testing.T) {
	if Unsupported == OK || Unsupported == BootstrapFail || BootstrapFail == OK {
		t.Fatal("Expected OK, BootstrapFail and Unsupported to be distinct")
	}
	if UnsupportedType != 0 {
		t.Fatalf("Expected UnsupportedType to be 0, got %d", int32(UnsupportedType))
	}
	if UnsupportedType == BootstrapFail {
		t.Fatal("Expected UnsupportedType to differ from BootstrapFail")
	}
}
