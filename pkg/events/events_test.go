package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowstudio/pkg/models"
)

func TestEventTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		event interface{ GetType() EventType }
		want  EventType
	}{
		{event: FlowSaved{}, want: FlowSavedEvent},
		{event: FlowDeleted{}, want: FlowDeletedEvent},
		{event: SessionOpened{}, want: SessionOpenedEvent},
		{event: SessionClosed{}, want: SessionClosedEvent},
		{event: PlaygroundRunFinished{}, want: PlaygroundRunFinishedEvent},
		{event: PlaygroundRunFailed{}, want: PlaygroundRunFailedEvent},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.event.GetType())
		})
	}
}

func TestNewBaseEvent(t *testing.T) {
	t.Parallel()

	first := NewBaseEvent(FlowSavedEvent, "company.team", "hello")
	second := NewBaseEvent(FlowSavedEvent, "company.team", "hello")

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "company.team/hello", first.Key())
	assert.WithinDuration(t, time.Now().UTC(), first.Timestamp, time.Minute)
	assert.NotNil(t, first.Metadata)
}

func TestPlaygroundRunFinished_JSON(t *testing.T) {
	t.Parallel()

	original := PlaygroundRunFinished{
		BaseEvent: NewBaseEvent(PlaygroundRunFinishedEvent, "company.team", "hello"),
		NodeID:    "task-1",
		Status:    models.PlaygroundStatusSuccess,
		Duration:  800 * time.Millisecond,
	}
	original.SessionID = "session-1"

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "playground.run.finished", raw["type"])
	assert.Equal(t, "task-1", raw["node_id"])
	assert.Equal(t, "session-1", raw["session_id"])

	var decoded PlaygroundRunFinished
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.NodeID, decoded.NodeID)
	assert.Equal(t, original.Duration, decoded.Duration)
}
