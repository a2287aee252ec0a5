// Package logging provides structured logging for picstream.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

const timeFormat = "15:04:05"

// Logger wraps zerolog so the output writer can be swapped while progress bars are shown.
// A logger and all its children share one output.
type Logger struct {
	zlog   zerolog.Logger
	output *switchWriter
}

// switchWriter is an io.Writer whose destination can change between writes
type switchWriter struct {
	mx sync.RWMutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.w.Write(p)
}

func (s *switchWriter) set(w io.Writer) {
	s.mx.Lock()
	s.w = w
	s.mx.Unlock()
}

func (s *switchWriter) get() io.Writer {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.w
}

// NewLogger creates a console logger writing to w
func NewLogger(w io.Writer) *Logger {
	output := &switchWriter{w: w}
	return &Logger{
		zlog: zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: timeFormat,
		}).With().Timestamp().Logger(),
		output: output,
	}
}

// NewDefaultLogger creates a console logger on stderr
func NewDefaultLogger() *Logger {
	return NewLogger(os.Stderr)
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// WithField returns a child logger carrying one extra string field
func (l *Logger) WithField(key, value string) *Logger {
	return &Logger{
		zlog:   l.zlog.With().Str(key, value).Logger(),
		output: l.output,
	}
}

// SetOutput redirects the logger and its children, e.g. above progress bars.
// A nop logger stays silent.
func (l *Logger) SetOutput(w io.Writer) {
	if l.output != nil {
		l.output.set(w)
	}
}

// Output returns the current output writer.
func (l *Logger) Output() io.Writer {
	if l.output == nil {
		return io.Discard
	}
	return l.output.get()
}

// Debugf logs a debug message with printf-style formatting.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

// Infof logs an info message with printf-style formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

// Errorf logs an error message with printf-style formatting.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zlog.Error().Msgf(format, args...)
}

// SetVerbose switches the global level between debug and info
func SetVerbose(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
