// Package events defines the notifications emitted while flows are edited.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/dukex/flowstudio/pkg/models"
)

type EventType string

// Topic carries every flowstudio event.
const Topic = "flowstudio.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Flow lifecycle events.
	FlowSavedEvent   EventType = "flow.saved"
	FlowDeletedEvent EventType = "flow.deleted"

	// Editing session events.
	SessionOpenedEvent EventType = "session.opened"
	SessionClosedEvent EventType = "session.closed"

	// Playground events.
	PlaygroundRunFinishedEvent EventType = "playground.run.finished"
	PlaygroundRunFailedEvent   EventType = "playground.run.failed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Namespace string         `json:"namespace"`
	FlowID    string         `json:"flow_id"`
	SessionID string         `json:"session_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// FlowSaved is published after every successful auto-save.
type FlowSaved struct {
	BaseEvent

	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

func (f FlowSaved) GetType() EventType {
	return FlowSavedEvent
}

type FlowDeleted struct {
	BaseEvent
}

func (f FlowDeleted) GetType() EventType {
	return FlowDeletedEvent
}

type SessionOpened struct {
	BaseEvent

	Created bool `json:"created"`
}

func (s SessionOpened) GetType() EventType {
	return SessionOpenedEvent
}

type SessionClosed struct {
	BaseEvent
}

func (s SessionClosed) GetType() EventType {
	return SessionClosedEvent
}

// PlaygroundRunFinished carries the transient result of a playground run.
type PlaygroundRunFinished struct {
	BaseEvent

	NodeID   string                  `json:"node_id"`
	Status   models.PlaygroundStatus `json:"status"`
	Duration time.Duration           `json:"duration"`
}

func (p PlaygroundRunFinished) GetType() EventType {
	return PlaygroundRunFinishedEvent
}

type PlaygroundRunFailed struct {
	BaseEvent

	NodeID string `json:"node_id"`
	Error  string `json:"error"`
}

func (p PlaygroundRunFailed) GetType() EventType {
	return PlaygroundRunFailedEvent
}

func NewBaseEvent(eventType EventType, namespace, flowID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Namespace: namespace,
		FlowID:    flowID,
		Metadata:  make(map[string]any),
	}
}

// Key is the partition key of events about a flow.
func (b BaseEvent) Key() string {
	return b.Namespace + "/" + b.FlowID
}
