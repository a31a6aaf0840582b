// Package logging builds the logr.Logger the rest of the module logs
// through, backed by zap.
package logging

import (
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Verbosity enables logr V(n) lines for n <= Verbosity.
	Verbosity int

	// JSON selects the production encoder instead of the console one.
	JSON bool
}

// New returns a logger writing to w.
func New(w io.Writer, o Options) logr.Logger {
	var enc zapcore.Encoder
	if o.JSON {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	// logr V(n) is zap level -n.
	lvl := zap.NewAtomicLevelAt(zapcore.Level(-o.Verbosity))
	core := zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
	return zapr.NewLogger(zap.New(core))
}
