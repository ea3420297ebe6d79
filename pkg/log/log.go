package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging contract shared by the core and its hosts.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Fatal(str string)
}

type logger struct {
	l *logrus.Logger
}

// New returns a Logger writing to stdout at info level.
func New() Logger {
	return NewWithWriter(os.Stdout, logrus.InfoLevel)
}

// NewWithWriter returns a Logger that writes entries at or above
// level to w.
func NewWithWriter(w io.Writer, level logrus.Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return &logger{l: l}
}

// ParseLevel converts a level name ("debug", "info", ...) into a
// logrus.Level.
func ParseLevel(name string) (logrus.Level, error) {
	return logrus.ParseLevel(name)
}

func (l *logger) Infof(format string, args ...interface{}) {
	l.l.Infof(format, args...)
}

func (l *logger) Errorf(format string, args ...interface{}) {
	l.l.Errorf(format, args...)
}

func (l *logger) Debugf(format string, args ...interface{}) {
	l.l.Debugf(format, args...)
}

func (l *logger) Fatal(str string) {
	l.l.Fatal(str)
}
