package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waftester/wafcharset/pkg/jsonutil"
)

func TestBaseEvent(t *testing.T) {
	before := time.Now().UTC()
	b := NewBase(EventTypeResult, "run-1")
	assert.Equal(t, EventTypeResult, b.EventType())
	assert.Equal(t, "run-1", b.ScanID())
	assert.False(t, b.Timestamp().Before(before))
}

func TestResultEvent_JSON(t *testing.T) {
	e := &ResultEvent{
		BaseEvent: NewBase(EventTypeResult, "run-1"),
		Result: ResultInfo{
			Index:       6,
			Encoding:    "UTF-16LE",
			ContentType: "application/json; charset=utf-16le",
			State:       "Done",
			StatusCode:  200,
		},
	}
	data, err := jsonutil.Marshal(e)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, jsonutil.Unmarshal(data, &got))
	assert.Equal(t, "result", got["type"])
	assert.Equal(t, "run-1", got["run_id"])

	result := got["result"].(map[string]any)
	assert.Equal(t, "UTF-16LE", result["encoding"])
	assert.Equal(t, float64(200), result["status"])
	assert.NotContains(t, result, "error")
}

func TestResultInfo_Final(t *testing.T) {
	assert.False(t, ResultInfo{State: "Ready"}.Final())
	assert.False(t, ResultInfo{State: "Sent"}.Final())
	assert.True(t, ResultInfo{State: "No Response"}.Final())
	assert.True(t, ResultInfo{State: "Error"}.Final())
}
