// Package logging adapts github.com/charmbracelet/log into the small
// tag-scoped logger used by the scheduler and worker packages and the
// CLI: one adapter per component, with fields carried
// forward via With. Every record is stamped with a monotonic sequence
// number, the Go-native stand-in for the original's "originating
// thread identifier" (goroutines expose no stable OS id): combined
// with the component tag and any caller-supplied worker index passed
// via With("worker", n), the sequence number lets a reader reconstruct
// per-goroutine ordering from the log stream alone.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	cblog "github.com/charmbracelet/log"
)

// Options configures the charmbracelet/log adapter.
type Options struct {
	Writer       io.Writer
	Level        string
	ReportCaller bool
	Tag          string
	Fields       map[string]interface{}
}

// Logger is a tagged structured logger wrapping a charmbracelet/log
// instance. A nil *Logger is safe to call and discards output.
type Logger struct {
	logger *cblog.Logger
	fields []interface{}
	tag    string
	seq    *atomic.Uint64
}

// New constructs a Logger adapter for the given tag.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("logging: parse level: %w", err)
		}
		level = parsed
	}

	base := cblog.NewWithOptions(writer, cblog.Options{
		Level:           level,
		ReportTimestamp: true,
		ReportCaller:    opts.ReportCaller,
		Prefix:          opts.Tag,
	})

	fields := mapToFields(opts.Fields)

	return &Logger{logger: base, fields: fields, tag: opts.Tag, seq: new(atomic.Uint64)}, nil
}

// Discard returns a Logger that drops every entry, used as the
// default when no logger is configured.
func Discard() *Logger {
	l, _ := New(Options{Writer: io.Discard})
	return l
}

// Tag returns the component tag this logger was constructed with.
func (l *Logger) Tag() string {
	if l == nil {
		return ""
	}
	return l.tag
}

// With derives a child logger carrying additional persistent fields.
// The child shares the parent's sequence counter, so records emitted
// through either still interleave in a single monotonic order.
func (l *Logger) With(fields ...interface{}) *Logger {
	if l == nil {
		return nil
	}
	next := make([]interface{}, len(l.fields), len(l.fields)+len(fields))
	copy(next, l.fields)
	next = append(next, fields...)
	return &Logger{logger: l.logger, fields: next, tag: l.tag, seq: l.seq}
}

// Trace emits the most verbose entry, the finest of the six severities
// spec.md §6.4 requires. charmbracelet/log has no distinct trace level,
// so it rides the wire as debug with the field level_name=trace.
func (l *Logger) Trace(msg string, fields ...interface{}) {
	l.log(cblog.DebugLevel, msg, append([]interface{}{"level_name", "trace"}, fields...)...)
}

// Debug emits a debug entry.
func (l *Logger) Debug(msg string, fields ...interface{}) { l.log(cblog.DebugLevel, msg, fields...) }

// Info emits an info entry.
func (l *Logger) Info(msg string, fields ...interface{}) { l.log(cblog.InfoLevel, msg, fields...) }

// Warn emits a warning entry.
func (l *Logger) Warn(msg string, fields ...interface{}) { l.log(cblog.WarnLevel, msg, fields...) }

// Error emits an error entry.
func (l *Logger) Error(msg string, fields ...interface{}) { l.log(cblog.ErrorLevel, msg, fields...) }

// Fatal emits the most severe entry. Unlike charmbracelet/log's own
// Fatal, this does not exit the process — callers that want the
// original exit-on-fatal behavior do so explicitly (the CLI entry
// point is the only caller that should ever make that call).
func (l *Logger) Fatal(msg string, fields ...interface{}) {
	l.log(cblog.ErrorLevel, msg, append([]interface{}{"level_name", "fatal"}, fields...)...)
}

func (l *Logger) log(level cblog.Level, msg string, fields ...interface{}) {
	if l == nil || l.logger == nil {
		return
	}
	seq := uint64(0)
	if l.seq != nil {
		seq = l.seq.Add(1)
	}
	payload := append(append([]interface{}{"seq", seq}, l.fields...), fields...)
	switch level {
	case cblog.DebugLevel:
		l.logger.Debug(msg, payload...)
	case cblog.WarnLevel:
		l.logger.Warn(msg, payload...)
	case cblog.ErrorLevel:
		l.logger.Error(msg, payload...)
	default:
		l.logger.Info(msg, payload...)
	}
}

func mapToFields(input map[string]interface{}) []interface{} {
	if len(input) == 0 {
		return nil
	}
	out := make([]interface{}, 0, len(input)*2)
	for k, v := range input {
		out = append(out, k, v)
	}
	return out
}
