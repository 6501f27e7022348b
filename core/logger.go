package core

// Logger is the app-wide leveled logger contract.
// Extra args may carry an error, a user.User (to tag the report) or any
// printable context value; implementations decide what to do with each.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
