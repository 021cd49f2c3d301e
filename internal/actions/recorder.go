package actions

import (
	"fmt"
	"strings"
)

// Recorder is an in-memory Runner. It records every interaction so tests
// can assert on what the action asked the host to do.
type Recorder struct {
	Inputs   map[string]string
	Messages []string
	Warnings []string
	Failures []string
	Masked   []string
	Exported []Variable
	Paths    []string

	// ExportErr and AddPathErr, when set, are returned by the matching call.
	ExportErr  error
	AddPathErr error
}

// Variable is one exported name/value pair.
type Variable struct {
	Name  string
	Value string
}

// NewRecorder returns a Recorder serving the given inputs.
func NewRecorder(inputs map[string]string) *Recorder {
	if inputs == nil {
		inputs = map[string]string{}
	}
	return &Recorder{Inputs: inputs}
}

// Input returns the trimmed input value.
func (r *Recorder) Input(name string) string {
	return strings.TrimSpace(r.Inputs[name])
}

// Debug records a debug message.
func (r *Recorder) Debug(msg string, keysAndValues ...interface{}) {
	r.Messages = append(r.Messages, "debug: "+formatMessage(msg, keysAndValues...))
}

// Info records an informational message.
func (r *Recorder) Info(msg string, keysAndValues ...interface{}) {
	r.Messages = append(r.Messages, formatMessage(msg, keysAndValues...))
}

// Warn records a warning.
func (r *Recorder) Warn(msg string, keysAndValues ...interface{}) {
	r.Warnings = append(r.Warnings, formatMessage(msg, keysAndValues...))
}

// Error records a non-fatal error message.
func (r *Recorder) Error(msg string, keysAndValues ...interface{}) {
	r.Messages = append(r.Messages, "error: "+formatMessage(msg, keysAndValues...))
}

// Success records a success message.
func (r *Recorder) Success(msg string) {
	r.Messages = append(r.Messages, msg)
}

// Fail records a fatal failure.
func (r *Recorder) Fail(err error) {
	if err == nil {
		return
	}
	r.Failures = append(r.Failures, err.Error())
}

// Failed reports whether any failure was recorded.
func (r *Recorder) Failed() bool {
	return len(r.Failures) > 0
}

// Mask records a masked value.
func (r *Recorder) Mask(value string) {
	r.Masked = append(r.Masked, value)
}

// ExportVariable records an exported variable.
func (r *Recorder) ExportVariable(name, value string) error {
	if r.ExportErr != nil {
		return r.ExportErr
	}
	if name == "" {
		return fmt.Errorf("export variable: empty name")
	}
	r.Exported = append(r.Exported, Variable{Name: name, Value: value})
	return nil
}

// AddPath records a path registration.
func (r *Recorder) AddPath(dir string) error {
	if r.AddPathErr != nil {
		return r.AddPathErr
	}
	r.Paths = append(r.Paths, dir)
	return nil
}

// Env returns the exported variables as a map.
func (r *Recorder) Env() map[string]string {
	env := make(map[string]string, len(r.Exported))
	for _, v := range r.Exported {
		env[v.Name] = v.Value
	}
	return env
}

// IsMasked reports whether value was masked.
func (r *Recorder) IsMasked(value string) bool {
	for _, m := range r.Masked {
		if m == value {
			return true
		}
	}
	return false
}
