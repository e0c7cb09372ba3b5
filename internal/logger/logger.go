package logger

import "go.uber.org/zap"

var Log = zap.NewNop()

// Init replaces the package logger with a production logger. Call once at
// startup; before that, Log is a nop so tests stay quiet.
func Init() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	Log = l
	return l
}
