package logger

import (
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	mu  sync.RWMutex
	log *zap.Logger
)

// L returns the process logger, or nil before initialisation.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger installs l as the process logger and as the zap and otelzap globals,
// so otelzap.Ctx(ctx) call sites resolve to the same cores.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()

	zap.ReplaceGlobals(l)
	otelzap.ReplaceGlobals(otelzap.New(l))
}

// GetLogger returns the process logger, falling back to a console logger.
func GetLogger() *zap.Logger {
	if l := L(); l != nil {
		return l
	}
	fallback := NewFallbackLogger()
	SetLogger(fallback)
	return fallback
}

// Sync flushes any buffered log entries. Should be called before the application exits.
func Sync() error {
	l := L()
	if l == nil {
		return nil
	}
	return l.Sync()
}
