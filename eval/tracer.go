// Copyright © 2024 The ELPS authors

package eval

// Tracer observes evaluation.  A runtime with an enabled Tracer evaluates
// every value through the general dispatcher so that each step is reported.
type Tracer interface {
	// Is the tracer enabled?
	IsEnabled() bool
	// Enable the tracer
	Enable() error
	// End the tracing session and flush any output
	Complete() error
	// Step is called as f begins dispatching an expression
	Step(f *Frame)
	// Start is called as f begins running its action.  The returned
	// function is called when the action returns, throws or fails.
	Start(f *Frame) func()
}

// tracing returns true if an enabled tracer is installed.
func (rt *Runtime) tracing() bool {
	return rt.Tracer != nil && rt.Tracer.IsEnabled()
}
