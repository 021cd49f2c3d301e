package actions

import (
	"fmt"
	"strings"
)

// Logger is the logging surface shared with the rest of the action.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Environment publishes values into the environment of later steps.
type Environment interface {
	// Mask marks value as sensitive so the host redacts it from logs.
	Mask(value string)
	// ExportVariable sets name for the rest of this run and later steps.
	ExportVariable(name, value string) error
}

// PathRegistrar adds directories to the executable search path.
type PathRegistrar interface {
	AddPath(dir string) error
}

// Reporter is the fatal-failure channel. Fail marks the run failed but does
// not stop execution.
type Reporter interface {
	Fail(err error)
	Failed() bool
}

// Runner is everything the action needs from its host.
type Runner interface {
	Logger
	Environment
	PathRegistrar
	Reporter
	Input(name string) string
	Success(msg string)
}

// InputEnvName returns the environment variable carrying the named input.
func InputEnvName(name string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// formatMessage renders msg followed by key=value pairs.
func formatMessage(msg string, keysAndValues ...interface{}) string {
	if len(keysAndValues) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		var value interface{} = "(missing)"
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		fmt.Fprintf(&b, " %s=%v", key, value)
	}
	return b.String()
}
