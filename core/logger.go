package core

// Logger is a leveled logger.
// args may carry an error, a map[string]interface{} of extra fields and the authenticated student.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
