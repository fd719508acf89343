// Package diag holds the structured logger shared by the drawing engine.
// By default nothing is logged.
package diag

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gg"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs l for the engine and for the gg rasterizer. Passing nil
// restores silent logging.
//
// Levels used:
//   - debug: ignored input, degraded environments, resize decisions
//   - info: exports delivered, surfaces attached
//   - warn: encoding failures
func SetLogger(l *slog.Logger) {
	gg.SetLogger(l)
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the active logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
