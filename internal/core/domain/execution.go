package domain

import "time"

// ExecutionResult is the outcome of running one action.
type ExecutionResult struct {
	Label    Label
	ExitCode int
	Duration time.Duration

	// Output is the captured bundler output. It is only retained when the action was silenced or failed.
	Output string

	// OutputDigest is the digest of the declared outputs, set once they were verified.
	OutputDigest string
}
