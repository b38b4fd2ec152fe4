package dbtslx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobPollTransitions(t *testing.T) {
	job := QueryJob{QueryId: "q-1", State: JobStateSubmitted}

	job = job.withPollResponse(QueryStatusCompiled, "", 0)
	assert.Equal(t, JobStateSubmitted, job.State)
	assert.False(t, job.IsTerminal())

	job = job.withPollResponse(QueryStatusRunning, "", 0)
	assert.Equal(t, JobStateRunning, job.State)

	job = job.withPollResponse(QueryStatusSuccessful, "", 3)
	assert.Equal(t, JobStateComplete, job.State)
	assert.Equal(t, int64(3), job.TotalPages)
	assert.True(t, job.IsTerminal())
}

func TestJobFailureKeepsGatewayMessage(t *testing.T) {
	job := QueryJob{QueryId: "q-1", State: JobStateRunning}

	job = job.withPollResponse(QueryStatusFailed, "Unknown dimension: foo", 0)
	assert.Equal(t, JobStateFailed, job.State)
	assert.Equal(t, "Unknown dimension: foo", job.Error)
	assert.True(t, job.IsTerminal())
}

func TestJobUnknownStatusStaysInFlight(t *testing.T) {
	job := QueryJob{QueryId: "q-1", State: JobStateSubmitted}

	job = job.withPollResponse(QueryStatus("QUEUED"), "", 0)
	assert.Equal(t, JobStateRunning, job.State)
	assert.False(t, job.IsTerminal())
}

func TestJobTimedOutIsTerminal(t *testing.T) {
	job := QueryJob{QueryId: "q-1", State: JobStateRunning}

	job = job.WithTimedOut()
	assert.Equal(t, JobStateTimedOut, job.State)
	assert.True(t, job.IsTerminal())
}
