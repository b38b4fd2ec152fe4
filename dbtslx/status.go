package dbtslx

// QueryStatus is the job status reported by the gateway.
type QueryStatus string

const (
	QueryStatusAccepted   QueryStatus = "ACCEPTED"
	QueryStatusCompiled   QueryStatus = "COMPILED"
	QueryStatusRunning    QueryStatus = "RUNNING"
	QueryStatusSuccessful QueryStatus = "SUCCESSFUL"
	QueryStatusFailed     QueryStatus = "FAILED"
)

// JobState is the local view of an asynchronous query job.
type JobState string

const (
	JobStateSubmitted JobState = "SUBMITTED"
	JobStateRunning   JobState = "RUNNING"
	JobStateComplete  JobState = "COMPLETE"
	JobStateFailed    JobState = "FAILED"
	JobStateTimedOut  JobState = "TIMED_OUT"
)

// QueryJob is an immutable snapshot of a submitted query. Poll responses
// produce new values; terminal jobs are never re-polled.
type QueryJob struct {
	QueryId    string
	State      JobState
	Error      string
	TotalPages int64
}

func (j QueryJob) IsTerminal() bool {
	switch j.State {
	case JobStateComplete, JobStateFailed, JobStateTimedOut:
		return true
	}
	return false
}

// WithTimedOut marks the job as having exceeded its polling bound.
func (j QueryJob) WithTimedOut() QueryJob {
	j.State = JobStateTimedOut
	return j
}

// withPollResponse applies one gateway status response as a pure state
// transition, keeping the polling loop testable without a network.
func (j QueryJob) withPollResponse(status QueryStatus, errMsg string, totalPages int64) QueryJob {
	switch status {
	case QueryStatusAccepted, QueryStatusCompiled:
		j.State = JobStateSubmitted
	case QueryStatusRunning:
		j.State = JobStateRunning
	case QueryStatusSuccessful:
		j.State = JobStateComplete
		j.TotalPages = totalPages
	case QueryStatusFailed:
		j.State = JobStateFailed
		j.Error = errMsg
	default:
		// Unrecognized statuses keep the job in flight; the overall
		// timeout still bounds the loop.
		j.State = JobStateRunning
	}
	return j
}
