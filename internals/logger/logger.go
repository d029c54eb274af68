package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	WithFields(fields map[string]interface{}) Logger
}

type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLoggerWithLevel uses a text formatter for debug output and JSON otherwise.
func NewLogrusLoggerWithLevel(level string) Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if lvl >= logrus.DebugLevel {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return &LogrusLogger{entry: logrus.NewEntry(log).WithField("service", "marketplace")}
}

func (l *LogrusLogger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *LogrusLogger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *LogrusLogger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *LogrusLogger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// Nop discards everything. Used by tests and by clients constructed without a logger.
type Nop struct{}

func (Nop) Debug(string, ...interface{})               {}
func (Nop) Info(string, ...interface{})                {}
func (Nop) Warn(string, ...interface{})                {}
func (Nop) Error(string, ...interface{})               {}
func (n Nop) WithFields(map[string]interface{}) Logger { return n }
