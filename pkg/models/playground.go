package models

import (
	"slices"
	"time"
)

// PlaygroundStatus is the terminal status of a playground run.
type PlaygroundStatus string

const (
	PlaygroundStatusSuccess PlaygroundStatus = "SUCCESS"
	PlaygroundStatusWarning PlaygroundStatus = "WARNING"
	PlaygroundStatusFailed  PlaygroundStatus = "FAILED"
)

// LogEntry is one log line of a playground run.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// MetricValue is one metric sample of a playground run.
type MetricValue struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// PlaygroundExecutionData is the transient result of running a single node in the playground.
// It is never written back into the persisted flow.
type PlaygroundExecutionData struct {
	NodeID   string           `json:"node_id"`
	Status   PlaygroundStatus `json:"status"`
	Outputs  map[string]any   `json:"outputs"`
	Metrics  []MetricValue    `json:"metrics"`
	Logs     []LogEntry       `json:"logs"`
	Duration time.Duration    `json:"duration"`
}

// Clone returns a deep copy of the result.
func (p *PlaygroundExecutionData) Clone() *PlaygroundExecutionData {
	if p == nil {
		return nil
	}

	out := *p
	out.Metrics = slices.Clone(p.Metrics)
	out.Logs = slices.Clone(p.Logs)

	if p.Outputs != nil {
		out.Outputs = make(map[string]any, len(p.Outputs))
		for key, value := range p.Outputs {
			out.Outputs[key] = CloneValue(value)
		}
	}

	return &out
}
