package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusState_FailureTimestampOnlyAfterFailure(t *testing.T) {
	state := NewStatusState()
	at := time.Date(2026, 10, 14, 11, 0, 0, 0, time.UTC)

	data, err := json.Marshal(state.Snapshot())
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.NotContains(t, body, "last_failure_at")
	assert.NotContains(t, body, "last_failure")

	state.RecordFailure(at, "scrape", errors.New("timeout"), at.Add(30*time.Second))

	data, err = json.Marshal(state.Snapshot())
	require.NoError(t, err)
	body = map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "2026-10-14T11:00:00Z", body["last_failure_at"])
	assert.Equal(t, "scrape: timeout", body["last_failure"])
}
