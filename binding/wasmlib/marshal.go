package wasmlib

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/tcl-runtime/errors"
)

// memory is the part of api.Memory the marshaller uses.
type memory interface {
	Size() uint32
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	ReadUint32Le(offset uint32) (uint32, bool)
	ReadUint64Le(offset uint32) (uint64, bool)
	WriteUint64Le(offset uint32, v uint64) bool
}

// function is the part of api.Function the marshaller uses.
type function interface {
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}

type caller func(ctx context.Context, params ...uint64) ([]uint64, error)

// guest owns the allocator and memory of an instantiated module.
type guest struct {
	ctx    context.Context
	mem    memory
	export func(name string) function
	logger func() *zap.Logger
}

type kind uint8

const (
	kindHandle kind = iota // uintptr
	kindInt                // int32
	kindLong               // C long, 32-bit on wasm32
	kindDouble             // float64
	kindString             // NUL-terminated copy
	kindOutInt             // *int32
	kindOutLong            // *C long
	kindOutDouble          // *float64
	kindCString            // unsafe.Pointer result
)

func (k kind) valueType() api.ValueType {
	if k == kindDouble {
		return api.ValueTypeF64
	}
	return api.ValueTypeI32
}

type signature struct {
	ft      reflect.Type
	params  []kind
	results []kind
}

// lower maps a Go function type onto wasm32 value kinds.
func lower(ft reflect.Type) (*signature, error) {
	if ft.Kind() != reflect.Func || ft.IsVariadic() {
		return nil, fmt.Errorf("unsupported function type %s", ft)
	}
	sig := &signature{ft: ft}
	for i := 0; i < ft.NumIn(); i++ {
		k, err := paramKind(ft.In(i))
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		sig.params = append(sig.params, k)
	}
	if ft.NumOut() > 1 {
		return nil, fmt.Errorf("multiple results")
	}
	if ft.NumOut() == 1 {
		var k kind
		switch t := ft.Out(0); t.Kind() {
		case reflect.Uintptr:
			k = kindHandle
		case reflect.Int32:
			k = kindInt
		case reflect.UnsafePointer:
			k = kindCString
		default:
			return nil, fmt.Errorf("unsupported result type %s", t)
		}
		sig.results = append(sig.results, k)
	}
	return sig, nil
}

func paramKind(t reflect.Type) (kind, error) {
	switch t.Kind() {
	case reflect.Uintptr:
		return kindHandle, nil
	case reflect.Int32:
		return kindInt, nil
	case reflect.Int64:
		return kindLong, nil
	case reflect.Float64:
		return kindDouble, nil
	case reflect.String:
		return kindString, nil
	case reflect.Pointer:
		switch t.Elem().Kind() {
		case reflect.Int32:
			return kindOutInt, nil
		case reflect.Int64:
			return kindOutLong, nil
		case reflect.Float64:
			return kindOutDouble, nil
		}
	}
	return 0, fmt.Errorf("unsupported parameter type %s", t)
}

// check verifies the lowered signature against an export's wasm types.
func (s *signature) check(params, results []api.ValueType) error {
	if len(params) != len(s.params) || len(results) != len(s.results) {
		return fmt.Errorf("export has %d params and %d results, Go type has %d and %d",
			len(params), len(results), len(s.params), len(s.results))
	}
	for i, k := range s.params {
		if params[i] != k.valueType() {
			return fmt.Errorf("param %d is %s, want %s", i, api.ValueTypeName(params[i]), api.ValueTypeName(k.valueType()))
		}
	}
	for i, k := range s.results {
		if results[i] != k.valueType() {
			return fmt.Errorf("result %d is %s, want %s", i, api.ValueTypeName(results[i]), api.ValueTypeName(k.valueType()))
		}
	}
	return nil
}

// failed returns the results a call reports when it trapped or could not be made.
func (s *signature) failed() []reflect.Value {
	out := make([]reflect.Value, len(s.results))
	for i, k := range s.results {
		t := s.ft.Out(i)
		if k == kindInt {
			out[i] = reflect.ValueOf(int32(1)).Convert(t)
			continue
		}
		out[i] = reflect.Zero(t)
	}
	return out
}

type outParam struct {
	arg reflect.Value
	ptr uint32
	k   kind
}

// bindFunc builds a Go function of sig's type that calls into the guest.
func (g *guest) bindFunc(symbol string, sig *signature, call caller) reflect.Value {
	return reflect.MakeFunc(sig.ft, func(args []reflect.Value) []reflect.Value {
		results, err := g.invoke(sig, call, args)
		if err != nil {
			g.logger().Error("tcl call trapped", zap.String("symbol", symbol), zap.Error(errors.Trap(symbol, err)))
			return sig.failed()
		}
		return results
	})
}

func (g *guest) invoke(sig *signature, call caller, args []reflect.Value) (_ []reflect.Value, err error) {
	var (
		params = make([]uint64, len(args))
		allocs []uint32
		outs   []outParam
	)
	defer func() {
		for _, p := range allocs {
			g.free(p)
		}
	}()

	for i, a := range args {
		switch k := sig.params[i]; k {
		case kindHandle:
			params[i] = api.EncodeU32(uint32(a.Uint()))
		case kindInt, kindLong:
			params[i] = api.EncodeI32(int32(a.Int()))
		case kindDouble:
			params[i] = api.EncodeF64(a.Float())
		case kindString:
			p, err := g.writeCString(a.String())
			if err != nil {
				return nil, err
			}
			allocs = append(allocs, p)
			params[i] = api.EncodeU32(p)
		case kindOutInt, kindOutLong, kindOutDouble:
			if a.IsNil() {
				continue
			}
			p, err := g.malloc(8)
			if err != nil {
				return nil, err
			}
			allocs = append(allocs, p)
			var init uint64
			if k == kindOutDouble {
				init = math.Float64bits(a.Elem().Float())
			} else {
				init = uint64(uint32(int32(a.Elem().Int())))
			}
			if !g.mem.WriteUint64Le(p, init) {
				return nil, fmt.Errorf("scratch write out of bounds at %d", p)
			}
			outs = append(outs, outParam{arg: a, ptr: p, k: k})
			params[i] = api.EncodeU32(p)
		}
	}

	raw, err := call(g.ctx, params...)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(sig.results) {
		return nil, fmt.Errorf("got %d results, want %d", len(raw), len(sig.results))
	}

	for _, o := range outs {
		if o.k == kindOutDouble {
			bits, ok := g.mem.ReadUint64Le(o.ptr)
			if !ok {
				return nil, fmt.Errorf("scratch read out of bounds at %d", o.ptr)
			}
			o.arg.Elem().SetFloat(math.Float64frombits(bits))
			continue
		}
		v, ok := g.mem.ReadUint32Le(o.ptr)
		if !ok {
			return nil, fmt.Errorf("scratch read out of bounds at %d", o.ptr)
		}
		o.arg.Elem().SetInt(int64(int32(v)))
	}

	out := make([]reflect.Value, len(raw))
	for i, k := range sig.results {
		t := sig.ft.Out(i)
		switch k {
		case kindHandle:
			out[i] = reflect.ValueOf(uintptr(api.DecodeU32(raw[i]))).Convert(t)
		case kindInt:
			out[i] = reflect.ValueOf(api.DecodeI32(raw[i])).Convert(t)
		case kindCString:
			s, err := g.readCString(api.DecodeU32(raw[i]))
			if err != nil {
				return nil, err
			}
			out[i] = reflect.ValueOf(s).Convert(t)
		}
	}
	return out, nil
}

func (g *guest) malloc(size uint32) (uint32, error) {
	fn := g.export("malloc")
	if fn == nil {
		return 0, fmt.Errorf("no allocator available")
	}
	res, err := fn.Call(g.ctx, api.EncodeU32(size))
	if err != nil {
		return 0, err
	}
	if len(res) != 1 || res[0] == 0 {
		return 0, fmt.Errorf("malloc(%d) failed", size)
	}
	return api.DecodeU32(res[0]), nil
}

func (g *guest) free(ptr uint32) {
	fn := g.export("free")
	if fn == nil || ptr == 0 {
		return
	}
	if _, err := fn.Call(g.ctx, api.EncodeU32(ptr)); err != nil {
		g.logger().Warn("free failed", zap.Uint32("ptr", ptr), zap.Error(err))
	}
}

func (g *guest) writeCString(s string) (uint32, error) {
	p, err := g.malloc(uint32(len(s)) + 1)
	if err != nil {
		return 0, err
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	if !g.mem.Write(p, buf) {
		g.free(p)
		return 0, fmt.Errorf("write out of bounds: offset=%d, length=%d", p, len(buf))
	}
	return p, nil
}

// readCString copies the NUL-terminated string at ptr into Go memory and
// returns a pointer to the copy, NUL included. A zero ptr yields nil.
func (g *guest) readCString(ptr uint32) (unsafe.Pointer, error) {
	if ptr == 0 {
		return nil, nil
	}
	size := g.mem.Size()
	if ptr >= size {
		return nil, fmt.Errorf("read out of bounds: offset=%d", ptr)
	}
	data, ok := g.mem.Read(ptr, size-ptr)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d", ptr)
	}
	for i, c := range data {
		if c == 0 {
			buf := make([]byte, i+1)
			copy(buf, data[:i])
			return unsafe.Pointer(&buf[0]), nil
		}
	}
	return nil, fmt.Errorf("unterminated string at %d", ptr)
}
