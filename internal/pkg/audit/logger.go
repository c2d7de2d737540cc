// Package audit implements the security and operational telemetry core: a
// category-routed logger writing to a colored console sink and per-category,
// per-day append-only files, with automatic redaction of sensitive context
// values.
package audit

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"
)

// Logger routes events to the console and to durable per-category sinks.
// Console writes are best-effort; durable-sink failures are returned to the
// caller so audit data is never lost silently.
type Logger struct {
	dir      string
	debug    bool
	console  io.Writer
	now      func() time.Time
	sinks    *sinkTable
	observer func(Category)
}

// Option configures a Logger.
type Option func(*Logger)

// WithDebug enables the DEBUG category. When disabled (the default), Debug
// calls do no work at all, redaction included.
func WithDebug(enabled bool) Option {
	return func(l *Logger) { l.debug = enabled }
}

// WithConsole overrides the console sink. Defaults to os.Stdout.
func WithConsole(w io.Writer) Option {
	return func(l *Logger) { l.console = w }
}

// WithClock overrides the time source, used by tests to pin sink dates.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// WithObserver registers a callback invoked once per written event, used to
// feed the metrics adapter without the logger depending on it.
func WithObserver(fn func(Category)) Option {
	return func(l *Logger) { l.observer = fn }
}

// New creates a Logger writing durable sinks under dir, creating the
// directory if absent.
func New(dir string, opts ...Option) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory %s: %w", dir, err)
	}
	l := &Logger{
		dir:     dir,
		console: os.Stdout,
		now:     time.Now,
		sinks:   newSinkTable(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Write records a pre-built Event. The category methods below are the usual
// entry points; Write exists for call sites that assemble the event
// themselves, such as the panic recovery hook. DEBUG events respect the
// debug flag here too.
func (l *Logger) Write(e Event) error {
	if e.Category == CategoryDebug && !l.debug {
		return nil
	}
	return l.log(e)
}

// log is the single choke point shared by all categories: sanitize, render,
// console write (errors swallowed), durable append (error returned).
func (l *Logger) log(e Event) error {
	e.Timestamp = l.now().UTC()
	e.Context = Sanitize(e.Context)

	record := render(e)

	// Console sink is non-critical; a broken terminal must not fail the caller.
	_, _ = fmt.Fprintln(l.console, colorFor(e)+record+colorReset)

	if err := l.append(l.sinkFileName(e.Category), record); err != nil {
		return err
	}
	if l.observer != nil {
		l.observer(e.Category)
	}
	return nil
}

// Error records an ERROR event. When err is non-nil its message and the
// current stack trace are appended to the record.
func (l *Logger) Error(msg string, err error, ctx map[string]any) error {
	e := Event{Category: CategoryError, Message: msg, Context: ctx}
	if err != nil {
		e.ErrDetail = err.Error()
		e.Stack = string(debug.Stack())
	}
	return l.log(e)
}

// Warn records a WARN event.
func (l *Logger) Warn(msg string, ctx map[string]any) error {
	return l.log(Event{Category: CategoryWarn, Message: msg, Context: ctx})
}

// Info records an INFO event.
func (l *Logger) Info(msg string, ctx map[string]any) error {
	return l.log(Event{Category: CategoryInfo, Message: msg, Context: ctx})
}

// Success records a SUCCESS event. It shares the general sink with INFO.
func (l *Logger) Success(msg string, ctx map[string]any) error {
	return l.log(Event{Category: CategorySuccess, Message: msg, Context: ctx})
}

// Debug records a DEBUG event, but only when the debug flag is set; otherwise
// the call returns immediately without touching the context.
func (l *Logger) Debug(msg string, ctx map[string]any) error {
	if !l.debug {
		return nil
	}
	return l.log(Event{Category: CategoryDebug, Message: msg, Context: ctx})
}

// UserAction records a USER_ACTION event attributed to actor.
func (l *Logger) UserAction(action, actor string, ctx map[string]any) error {
	msg := fmt.Sprintf("%s by %s", action, actor)
	return l.log(Event{Category: CategoryUserAction, Message: msg, Context: ctx})
}

// HTTP records one completed request. The status code selects the console
// color: >=400 error, 300-399 warning, otherwise success.
func (l *Logger) HTTP(method, path string, status int, duration time.Duration, user string, ctx map[string]any) error {
	msg := fmt.Sprintf("%s %s %d (%dms) user=%s", method, path, status, duration.Milliseconds(), user)
	return l.log(Event{Category: CategoryHTTP, Message: msg, Context: ctx, Status: status})
}

// Auth records an authentication event. result should be "success" or
// "failure" and drives the console color.
func (l *Logger) Auth(action, identifier, result string, ctx map[string]any) error {
	msg := fmt.Sprintf("%s identifier=%s result=%s", action, identifier, result)
	return l.log(Event{Category: CategoryAuth, Message: msg, Context: ctx, Result: result})
}

// Database records a database event, colored by result like Auth.
func (l *Logger) Database(operation, result string, ctx map[string]any) error {
	msg := fmt.Sprintf("%s result=%s", operation, result)
	return l.log(Event{Category: CategoryDatabase, Message: msg, Context: ctx, Result: result})
}
