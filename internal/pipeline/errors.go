package pipeline

import "fmt"

// UnknownJobError reports a job name outside the three recognized jobs.
// Dispatch fails with it before any stage logic runs.
type UnknownJobError struct {
	Job string
}

func (e *UnknownJobError) Error() string {
	return fmt.Sprintf("unknown job %q: expected build, test or publish", e.Job)
}

// NoTestsDetectedError reports a test run whose process exited cleanly but
// never printed a test summary. That usually means test discovery silently
// found nothing, which is a failure, not a pass.
type NoTestsDetectedError struct{}

func (e *NoTestsDetectedError) Error() string {
	return "test runner exited successfully but reported no test summary"
}
