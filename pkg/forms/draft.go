package forms

import (
	"fmt"

	"github.com/dukex/flowstudio/pkg/canvas"
	"github.com/dukex/flowstudio/pkg/dragdrop"
	"github.com/dukex/flowstudio/pkg/models"
)

// NodeUpdater applies a draft to the graph.
type NodeUpdater interface {
	UpdateNode(id string, patch canvas.NodePatch) (models.Node, error)
}

// Draft is the local edit state of one node. Nothing reaches the graph until Commit.
type Draft struct {
	form          Form
	nodeID        string
	label         string
	config        models.VariantConfig
	labelDetached bool
	detach        bool
	dirty         bool
}

// NewDraft starts a draft from the current node state. labelDetached is true when the label was
// already edited by hand in this session.
func NewDraft(node models.Node, form Form, labelDetached bool) *Draft {
	config := node.Data.Config.Clone()
	if config == nil {
		config = models.VariantConfig{}
	}

	return &Draft{
		form:          form,
		nodeID:        node.ID,
		label:         node.Data.Label,
		config:        config,
		labelDetached: labelDetached,
	}
}

// Form returns the form the draft is bound to.
func (d *Draft) Form() Form {
	return d.form
}

// Label returns the draft label.
func (d *Draft) Label() string {
	return d.label
}

// Config returns a copy of the draft configuration.
func (d *Draft) Config() models.VariantConfig {
	return d.config.Clone()
}

// Value returns the draft value of a field.
func (d *Draft) Value(name string) any {
	return models.CloneValue(d.config[name])
}

// Dirty reports whether the draft differs from the state it started from.
func (d *Draft) Dirty() bool {
	return d.dirty
}

// Set writes a field value. Changing "id" also renames the label while the label still mirrors
// the old id and was never edited by hand.
func (d *Draft) Set(name string, value any) error {
	if _, ok := d.form.Field(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	if name == models.ConfigKeyID {
		oldID, _ := d.config[models.ConfigKeyID].(string)
		newID, _ := value.(string)

		if !d.labelDetached && d.label == oldID {
			d.label = newID
		}
	}

	if value == nil {
		delete(d.config, name)
	} else {
		d.config[name] = models.CloneValue(value)
	}

	d.dirty = true

	return nil
}

// SetInput parses the raw editor text of a field and writes it.
func (d *Draft) SetInput(name, raw string) error {
	field, ok := d.form.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	value, err := ParseInput(field, raw)
	if err != nil {
		return err
	}

	return d.Set(name, value)
}

// SetLabel renames the node by hand, detaching the label from the id for the rest of the session.
func (d *Draft) SetLabel(label string) {
	d.label = label
	d.labelDetached = true
	d.detach = true
	d.dirty = true
}

// DropReference replaces the whole value of a field with the reference token of the transfer.
// A transfer without a token is ignored.
func (d *Draft) DropReference(name string, transfer dragdrop.Transfer) error {
	token := transfer[dragdrop.KeyText]
	if token == "" {
		return nil
	}

	return d.Set(name, token)
}

// Commit applies the draft to the graph with a single update.
func (d *Draft) Commit(graph NodeUpdater) (models.Node, error) {
	label := d.label

	node, err := graph.UpdateNode(d.nodeID, canvas.NodePatch{
		Label:       &label,
		Config:      d.config.Clone(),
		DetachLabel: d.detach,
	})
	if err != nil {
		return models.Node{}, fmt.Errorf("failed to commit node %s: %w", d.nodeID, err)
	}

	d.dirty = false

	return node, nil
}
