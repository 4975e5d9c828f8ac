package core

// Logger is the application logger.
// args may contain errors, map[string]interface{} extras and the acting Principal.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Principal identifies the authenticated caller in log entries.
type Principal struct {
	Role     string
	Username string
}
