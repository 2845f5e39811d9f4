package log

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewDebugLogger records all messages in memory, for tests.
func NewDebugLogger() DebugLogger {
	rec := &recorder{}
	return &debugLogger{
		zapLogger: loggerFromZap(zap.New(&memoryCore{rec: rec})),
		rec:       rec,
	}
}

type debugLogger struct {
	*zapLogger
	rec *recorder
}

type logRecord struct {
	level   zapcore.Level
	message string
}

type recorder struct {
	lock    sync.Mutex
	records []logRecord
	writers []io.Writer
}

// memoryCore forwards each log entry to the recorder.
type memoryCore struct {
	rec *recorder
}

func (c *memoryCore) Enabled(zapcore.Level) bool {
	return true
}

func (c *memoryCore) With([]zapcore.Field) zapcore.Core {
	return c
}

func (c *memoryCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return ce.AddCore(e, c)
}

func (c *memoryCore) Write(e zapcore.Entry, _ []zapcore.Field) error {
	c.rec.add(e.Level, e.Message)
	return nil
}

func (c *memoryCore) Sync() error {
	return nil
}

func (r *recorder) add(level zapcore.Level, message string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.records = append(r.records, logRecord{level: level, message: message})
	for _, w := range r.writers {
		fmt.Fprintf(w, "%s  %s\n", level.CapitalString(), message)
	}
}

func (r *recorder) messages(match func(zapcore.Level) bool) string {
	r.lock.Lock()
	defer r.lock.Unlock()
	var out strings.Builder
	for _, record := range r.records {
		if match(record.level) {
			out.WriteString(record.level.CapitalString())
			out.WriteString("  ")
			out.WriteString(record.message)
			out.WriteString("\n")
		}
	}
	return out.String()
}

func (l *debugLogger) ConnectTo(writer io.Writer) {
	l.rec.lock.Lock()
	defer l.rec.lock.Unlock()
	l.rec.writers = append(l.rec.writers, writer)
}

func (l *debugLogger) Truncate() {
	l.rec.lock.Lock()
	defer l.rec.lock.Unlock()
	l.rec.records = nil
}

func (l *debugLogger) AllMessages() string {
	return l.rec.messages(func(zapcore.Level) bool { return true })
}

func (l *debugLogger) DebugMessages() string {
	return l.rec.messages(func(level zapcore.Level) bool { return level == DebugLevel })
}

func (l *debugLogger) InfoMessages() string {
	return l.rec.messages(func(level zapcore.Level) bool { return level == InfoLevel })
}

func (l *debugLogger) WarnMessages() string {
	return l.rec.messages(func(level zapcore.Level) bool { return level == WarnLevel })
}

func (l *debugLogger) WarnAndErrorMessages() string {
	return l.rec.messages(func(level zapcore.Level) bool { return level >= WarnLevel })
}

func (l *debugLogger) ErrorMessages() string {
	return l.rec.messages(func(level zapcore.Level) bool { return level == ErrorLevel })
}
