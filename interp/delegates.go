package interp

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/wippyai/tcl-runtime/errors"
)

// Dispatcher runs host-side handlers by name. BindCallback uses it to
// reach the host object model without knowing its shape.
type Dispatcher interface {
	// ExecuteIfBound calls the handler registered as name with args.
	// It reports false, nil when no such handler exists.
	ExecuteIfBound(name string, args ...any) (bool, error)
}

// ExplicitRegistrar lets an owner supply exact delegate names instead of
// the kebab-case names derived from its methods.
type ExplicitRegistrar interface {
	Register() map[string]any
}

// Delegates is a Dispatcher backed by Go functions and methods.
type Delegates struct {
	funcs map[string]*Delegate
	mu    sync.RWMutex
}

type Delegate struct {
	Handler  reflect.Value
	Receiver reflect.Value
	Name     string
}

func NewDelegates() *Delegates {
	return &Delegates{
		funcs: make(map[string]*Delegate),
	}
}

// RegisterHost registers every exported method of owner under its
// kebab-case name (Hello -> hello, MoveToLoc -> move-to-loc).
func (d *Delegates) RegisterHost(owner any) error {
	if owner == nil {
		return errors.InvalidInput(errors.PhaseHost, "delegate owner cannot be nil")
	}
	rv := reflect.ValueOf(owner)

	d.mu.Lock()
	defer d.mu.Unlock()

	if er, ok := owner.(ExplicitRegistrar); ok {
		for name, handler := range er.Register() {
			hv := reflect.ValueOf(handler)
			if hv.Kind() != reflect.Func {
				return errors.New(errors.PhaseHost, errors.KindTypeMismatch).
					GoType(fmt.Sprintf("%T", handler)).
					Path(name).
					Detail("handler must be a function").
					Build()
			}
			d.funcs[name] = &Delegate{Handler: hv, Receiver: rv, Name: name}
		}
		return nil
	}

	rt := rv.Type()
	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		if !method.IsExported() {
			continue
		}
		name := toKebabCase(method.Name)
		d.funcs[name] = &Delegate{Handler: rv.Method(i), Receiver: rv, Name: name}
	}
	return nil
}

// RegisterFunc registers fn under name.
func (d *Delegates) RegisterFunc(name string, fn any) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseHost, "delegate name cannot be empty")
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return errors.New(errors.PhaseHost, errors.KindTypeMismatch).
			GoType(fmt.Sprintf("%T", fn)).
			Detail("handler must be a function").
			Build()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.funcs[name] = &Delegate{Handler: rv, Name: name}
	return nil
}

// Bound reports whether a delegate named name exists.
func (d *Delegates) Bound(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.funcs[name] != nil
}

// Names returns the registered delegate names in order.
func (d *Delegates) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.funcs))
	for name := range d.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExecuteIfBound calls the delegate name. A delegate without parameters is
// called with no arguments; otherwise args are converted to its parameter
// types. A returned non-nil error, or a panic, is reported as the error.
func (d *Delegates) ExecuteIfBound(name string, args ...any) (called bool, err error) {
	d.mu.RLock()
	del := d.funcs[name]
	d.mu.RUnlock()
	if del == nil {
		return false, nil
	}

	in, err := adaptArgs(name, del.Handler.Type(), args)
	if err != nil {
		return false, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseHost, errors.KindInvalidInput).
				Path(name).
				Detail("delegate panicked: %v", r).
				Build()
		}
	}()

	out := del.Handler.Call(in)
	if n := len(out); n > 0 {
		if last := out[n-1]; last.Type() == errorType && !last.IsNil() {
			return true, last.Interface().(error)
		}
	}
	return true, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func adaptArgs(name string, ft reflect.Type, args []any) ([]reflect.Value, error) {
	if ft.NumIn() == 0 {
		return nil, nil
	}

	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, errors.Arity(errors.PhaseHost, name, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, errors.Arity(errors.PhaseHost, name, fixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var want reflect.Type
		if i < fixed {
			want = ft.In(i)
		} else {
			want = ft.In(fixed).Elem()
		}
		v, err := adaptArg(a, want)
		if err != nil {
			return nil, errors.New(errors.PhaseHost, errors.KindTypeMismatch).
				Path(name, fmt.Sprint(i)).
				GoType(want.String()).
				Cause(err).
				Build()
		}
		in[i] = v
	}
	return in, nil
}

func adaptArg(a any, want reflect.Type) (reflect.Value, error) {
	if a == nil {
		switch want.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, fmt.Errorf("nil for %s", want)
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(want) {
		return v, nil
	}
	// Numeric conversions only; int -> string would yield a rune.
	if want.Kind() != reflect.String && v.Kind() != reflect.String && v.Type().ConvertibleTo(want) {
		return v.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", a, want)
}

// toKebabCase converts PascalCase to kebab-case.
// Handles acronyms: GetHTTPURL -> get-http-url
func toKebabCase(s string) string {
	if len(s) == 0 {
		return ""
	}

	runes := []rune(s)
	var result strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if unicode.IsUpper(r) {
			acronymEnd := i + 1
			for acronymEnd < len(runes) && unicode.IsUpper(runes[acronymEnd]) {
				acronymEnd++
			}

			if acronymEnd > i+1 {
				// Last uppercase before lowercase starts next word, not part of acronym
				if acronymEnd < len(runes) && unicode.IsLower(runes[acronymEnd]) {
					acronymEnd--
				}
			}

			if i > 0 {
				result.WriteByte('-')
			}

			for j := i; j < acronymEnd; j++ {
				result.WriteRune(unicode.ToLower(runes[j]))
			}
			i = acronymEnd - 1
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
