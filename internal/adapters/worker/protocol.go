package worker

// PersistentWorkerFlag is the flag a worker process is started with.
const PersistentWorkerFlag = "--persistent_worker"

// WorkRequest is one newline-delimited JSON request sent on the worker's stdin.
type WorkRequest struct {
	Arguments []string `json:"arguments"`
	RequestID int      `json:"requestId"`
}

// WorkResponse is one newline-delimited JSON response read from the worker's stdout.
type WorkResponse struct {
	ExitCode  int    `json:"exitCode"`
	Output    string `json:"output"`
	RequestID int    `json:"requestId"`
}
