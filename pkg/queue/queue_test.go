package queue

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	payload := RosterExportPayload{ExportID: uuid.New(), EventID: uuid.New(), OrganizationID: uuid.New()}

	job, err := NewJob(JobTypeRosterExport, payload)
	require.NoError(t, err)
	assert.Equal(t, JobTypeRosterExport, job.Type)
	assert.Zero(t, job.Attempt)
	assert.NotEmpty(t, job.ID)

	var got RosterExportPayload
	require.NoError(t, json.Unmarshal(job.Payload, &got))
	assert.Equal(t, payload, got)
}
