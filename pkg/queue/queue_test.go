package queue

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobEnvelope(t *testing.T) {
	in := NotificationDeliveryPayload{NotificationID: uuid.New(), UserID: uuid.New()}
	job, err := NewJob(JobTypeNotificationDelivery, in)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Zero(t, job.Attempt)

	var out NotificationDeliveryPayload
	require.NoError(t, job.Decode(&out))
	assert.Equal(t, in, out)

	job.Payload = []byte(`not json`)
	assert.Error(t, job.Decode(&out))
}

func TestJobExhausted(t *testing.T) {
	job := &Job{}
	for i := 0; i < MaxRetries; i++ {
		assert.False(t, job.Exhausted())
		job.Attempt++
	}
	assert.True(t, job.Exhausted())
}
