package models

import "time"

// ConcurrencyBehavior decides what happens to executions above the concurrency limit.
type ConcurrencyBehavior string

const (
	ConcurrencyQueue  ConcurrencyBehavior = "QUEUE"
	ConcurrencyCancel ConcurrencyBehavior = "CANCEL"
	ConcurrencyFail   ConcurrencyBehavior = "FAIL"
)

// Concurrency limits parallel executions of a flow.
type Concurrency struct {
	Behavior ConcurrencyBehavior `json:"behavior"        yaml:"behavior"        validate:"required,oneof=QUEUE CANCEL FAIL"`
	Limit    *int                `json:"limit,omitempty" yaml:"limit,omitempty" validate:"omitempty,min=0"`
}

// Retry configures flow-level retries.
type Retry struct {
	MaxAttempt *int `json:"max_attempt,omitempty" yaml:"max_attempt,omitempty" validate:"omitempty,min=0"`
}

// SLA configures the flow service level agreement.
type SLA struct {
	Duration string `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// FlowProperties is the flow-level metadata edited next to the canvas.
type FlowProperties struct {
	ID          string            `json:"id"                     yaml:"id"                     validate:"required"`
	Namespace   string            `json:"namespace"              yaml:"namespace"              validate:"required"`
	Description string            `json:"description,omitempty"  yaml:"description,omitempty"`
	Disabled    bool              `json:"disabled,omitempty"     yaml:"disabled,omitempty"`
	WorkerGroup string            `json:"worker_group,omitempty" yaml:"worker_group,omitempty"`
	Concurrency *Concurrency      `json:"concurrency,omitempty"  yaml:"concurrency,omitempty"`
	Labels      map[string]string `json:"labels"                 yaml:"labels"`
	Variables   map[string]any    `json:"variables"              yaml:"variables"`
	Retry       *Retry            `json:"retry,omitempty"        yaml:"retry,omitempty"`
	SLA         *SLA              `json:"sla,omitempty"          yaml:"sla,omitempty"`
}

// DefaultNamespace is used when a flow is opened without one.
const DefaultNamespace = "company.team"

// DefaultFlowProperties returns the properties a new editing session starts from.
func DefaultFlowProperties() FlowProperties {
	return FlowProperties{
		Namespace: DefaultNamespace,
		Labels:    map[string]string{},
		Variables: map[string]any{},
	}
}

// Clone returns a deep copy of the properties.
func (p FlowProperties) Clone() FlowProperties {
	if p.Concurrency != nil {
		concurrency := *p.Concurrency
		if concurrency.Limit != nil {
			limit := *concurrency.Limit
			concurrency.Limit = &limit
		}

		p.Concurrency = &concurrency
	}

	if p.Retry != nil {
		retry := *p.Retry
		if retry.MaxAttempt != nil {
			maxAttempt := *retry.MaxAttempt
			retry.MaxAttempt = &maxAttempt
		}

		p.Retry = &retry
	}

	if p.SLA != nil {
		sla := *p.SLA
		p.SLA = &sla
	}

	if p.Labels != nil {
		p.Labels, _ = CloneValue(p.Labels).(map[string]string)
	}

	if p.Variables != nil {
		p.Variables, _ = CloneValue(p.Variables).(map[string]any)
	}

	return p
}

// FlowDocument is the serialized graph of a flow.
type FlowDocument struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Flow is the persisted representation of a flow: its graph plus the sibling properties.
type Flow struct {
	Properties FlowProperties `json:"properties"           yaml:"properties"`
	Data       FlowDocument   `json:"data"                 yaml:"data"`
	CreatedAt  time.Time      `json:"created_at"           yaml:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"           yaml:"updated_at"`
	DeletedAt  *time.Time     `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
}

// Key returns the namespace-qualified identifier of the flow.
func (f *Flow) Key() string {
	return f.Properties.Namespace + "." + f.Properties.ID
}
