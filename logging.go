package tiff

import (
	"github.com/blend/go-sdk/logger"
)

// Logger is the minimal structured-logging seam the page writer uses to
// surface its state-machine transitions. It is deliberately
// narrower than blend/go-sdk's full Logger so callers can plug in any
// logging library without taking on that dependency themselves; the
// package's own default, NewDefaultLogger, wraps blend/go-sdk/logger.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// noopLogger is the zero-value Options.Logger: silent, so the core stays
// usable as a library with no logging side effects.
type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Errorf(string, ...interface{}) {}

// blendLogger adapts github.com/blend/go-sdk/logger to the Logger seam.
type blendLogger struct {
	log *logger.Logger
}

// NewDefaultLogger returns a Logger backed by blend/go-sdk/logger writing to
// its default output, for callers that want page-writer lifecycle events
// without wiring their own logger.
func NewDefaultLogger() Logger {
	return &blendLogger{log: logger.All()}
}

func (b *blendLogger) Debugf(format string, args ...interface{}) {
	if b.log == nil {
		return
	}
	b.log.Debugf(format, args...)
}

func (b *blendLogger) Errorf(format string, args ...interface{}) {
	if b.log == nil {
		return
	}
	b.log.Errorf(format, args...)
}

func loggerOrNoop(l Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return l
}
