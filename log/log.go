// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides leveled, structured loggers on top of the go-ethereum log package.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

// Logger writes structured records at several levels.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(level slog.Level) bool
}

// WithContext returns a logger carrying the given key/value context.
// The logger resolves the root logger on use, so it may be created in package vars
// before the root logger is configured.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

// Root returns the root logger.
func Root() ethlog.Logger {
	return ethlog.Root()
}

// SetDefault replaces the root logger.
func SetDefault(l ethlog.Logger) {
	ethlog.SetDefault(l)
}

// Setup configures the root logger to write to w.
// verbosity follows the classic scale: 0 crit, 1 error, 2 warn, 3 info, 4 debug, 5 trace.
func Setup(w io.Writer, verbosity int, json bool) {
	lvl := VerbosityToLevel(verbosity)

	var h slog.Handler
	if json {
		h = ethlog.JSONHandlerWithLevel(w, lvl)
	} else {
		h = ethlog.NewTerminalHandlerWithLevel(w, lvl, useColor(w))
	}
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// VerbosityToLevel maps the verbosity number to the slog level.
func VerbosityToLevel(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return ethlog.LevelCrit
	case verbosity == 1:
		return ethlog.LevelError
	case verbosity == 2:
		return ethlog.LevelWarn
	case verbosity == 3:
		return ethlog.LevelInfo
	case verbosity == 4:
		return ethlog.LevelDebug
	default:
		return ethlog.LevelTrace
	}
}

func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type lazyLogger struct {
	ctx []any

	mu   sync.Mutex
	root ethlog.Logger
	l    ethlog.Logger
}

func (ll *lazyLogger) get() ethlog.Logger {
	root := ethlog.Root()

	ll.mu.Lock()
	defer ll.mu.Unlock()
	if ll.l == nil || ll.root != root {
		ll.root = root
		ll.l = root.With(ll.ctx...)
	}
	return ll.l
}

func (ll *lazyLogger) Trace(msg string, ctx ...any) { ll.get().Trace(msg, ctx...) }
func (ll *lazyLogger) Debug(msg string, ctx ...any) { ll.get().Debug(msg, ctx...) }
func (ll *lazyLogger) Info(msg string, ctx ...any)  { ll.get().Info(msg, ctx...) }
func (ll *lazyLogger) Warn(msg string, ctx ...any)  { ll.get().Warn(msg, ctx...) }
func (ll *lazyLogger) Error(msg string, ctx ...any) { ll.get().Error(msg, ctx...) }

func (ll *lazyLogger) Enabled(level slog.Level) bool {
	return ll.get().Enabled(context.Background(), level)
}
