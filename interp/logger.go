package interp

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/tcl-runtime/binding"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the interp package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the interp package's logger.
// This must be called before the first bootstrap.
func SetLogger(l *zap.Logger) {
	logger = l
}

// loggerFor prefers the logger the binding was configured with.
func loggerFor(b *binding.Binding) *zap.Logger {
	if l := b.Options().Logger; l != nil {
		return l
	}
	return Logger()
}
