package wasmlib

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wippyai/tcl-runtime/binding"
)

func writeModule(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write module: %v", err)
	}
	return path
}

func TestLoaderDefaultFileName(t *testing.T) {
	if got := NewLoader(nil).DefaultFileName(); got != "tcl.wasm" {
		t.Fatalf("Expected tcl.wasm, got %q", got)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := NewLoader(nil).Open(filepath.Join(t.TempDir(), "absent.wasm"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestOpenInvalidModule(t *testing.T) {
	path := writeModule(t, []byte("not wasm"))
	_, err := NewLoader(nil).Open(path)
	if err == nil || !strings.Contains(err.Error(), "compile failed") {
		t.Fatalf("Expected compile error, got %v", err)
	}
}

func TestOpenModuleWithoutMemory(t *testing.T) {
	path := writeModule(t, []byte("\x00asm\x01\x00\x00\x00"))
	_, err := NewLoader(&Config{MemoryLimitPages: 16}).Open(path)
	if err == nil || !strings.Contains(err.Error(), "memory") {
		t.Fatalf("Expected missing memory error, got %v", err)
	}
}

func TestBindingWithInvalidModule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, binding.ThirdPartyDir, FileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("\x00asm\x01\x00\x00\x00"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := binding.New(binding.Options{Loader: NewLoader(nil), Dir: dir, Logger: zap.NewNop()})
	if err := b.EnsureBound(); err == nil {
		t.Fatal("Expected bind to fail")
	}
	if b.Bound() {
		t.Fatal("Expected binding to stay unbound")
	}
}
