package log

// nullLogger discards everything, including Fatal, which does not
// exit the process.
type nullLogger struct{}

func (nullLogger) Fatal(string)                   {}
func (nullLogger) Infof(string, ...interface{})  {}
func (nullLogger) Errorf(string, ...interface{}) {}
func (nullLogger) Debugf(string, ...interface{}) {}

// NewNullLogger returns a logger that does nothing. Useful for tests
// and for hosts that run programs with known-unimplemented opcodes.
func NewNullLogger() Logger {
	return nullLogger{}
}
