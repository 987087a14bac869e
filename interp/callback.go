package interp

import (
	"fmt"

	"go.uber.org/zap"
)

// DefaultDelegates are run by BindCallback when no delegate names are given.
var DefaultDelegates = []string{"hello", "hello2"}

// BindCallback registers the command "name x y". Each invocation converts
// x and y to doubles and then runs each named delegate that d has bound,
// passing x and y. Wrong arity, a conversion failure or a delegate error
// is reported to the script as an error.
func (ip *Interp) BindCallback(name string, d Dispatcher, delegates ...string) Status {
	if !ip.Alive() {
		return BootstrapFail
	}
	if d == nil {
		return Error
	}
	if len(delegates) == 0 {
		delegates = DefaultDelegates
	}
	delegates = append([]string(nil), delegates...)

	return ip.RegisterCommand(name, func(ip *Interp, objv []Obj) (Obj, Status) {
		if len(objv) != 3 {
			ip.log.Info("wrong # of args", zap.String("command", name), zap.Int("words", len(objv)))
			return ip.NewString(fmt.Sprintf("wrong # args: should be \"%s x y\"", name)), Error
		}
		x, st := ip.ToDouble(objv[1])
		if st != OK {
			return 0, st
		}
		y, st := ip.ToDouble(objv[2])
		if st != OK {
			return 0, st
		}

		for _, del := range delegates {
			if _, err := d.ExecuteIfBound(del, x, y); err != nil {
				ip.log.Info("tcl callback delegate failed", zap.String("command", name), zap.String("delegate", del), zap.Error(err))
				return ip.NewString(err.Error()), Error
			}
		}
		return 0, OK
	}, nil)
}

// BindHost is BindCallback with delegates taken from the exported methods of owner.
func (ip *Interp) BindHost(name string, owner any, delegates ...string) Status {
	if !ip.Alive() {
		return BootstrapFail
	}
	d := NewDelegates()
	if err := d.RegisterHost(owner); err != nil {
		ip.log.Warn("register tcl callback owner", zap.String("command", name), zap.Error(err))
		return Error
	}
	return ip.BindCallback(name, d, delegates...)
}
