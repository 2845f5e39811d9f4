package client

import (
	"fmt"

	"github.com/umisama/go-regexpcache"

	"github.com/owi-lab/go-metadatabase/internal/pkg/log"
)

const clientLoggerPrefix = "HTTP%s\t"

// Logger adapts log.Logger for resty, credentials are masked.
type Logger struct {
	logger log.Logger
}

func (l *Logger) Debugf(format string, v ...any) {
	l.logWithoutSecrets("", format, v...)
}

func (l *Logger) Warnf(format string, v ...any) {
	l.logWithoutSecrets("-WARN", format, v...)
}

func (l *Logger) Errorf(format string, v ...any) {
	l.logWithoutSecrets("-ERROR", format, v...)
}

func (l *Logger) logWithoutSecrets(level string, format string, v ...any) {
	v = append([]any{level}, v...)
	msg := fmt.Sprintf(clientLoggerPrefix+format, v...)
	msg = regexpcache.MustCompile(`(?i)(token:?\s*)\S+`).ReplaceAllString(msg, "$1*****")
	msg = regexpcache.MustCompile(`(?i)(basic\s+)\S+`).ReplaceAllString(msg, "$1*****")
	l.logger.Debug(msg)
}
