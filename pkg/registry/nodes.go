// Package registry provides task plugin registration for the registry system.
package registry

import (
	"github.com/dukex/flowstudio/pkg/tasks/httprequest"
	"github.com/dukex/flowstudio/pkg/tasks/log"
	"github.com/dukex/flowstudio/pkg/tasks/schedule"
	"github.com/dukex/flowstudio/pkg/tasks/transform"
	"github.com/dukex/flowstudio/pkg/tasks/webhook"
)

// RegisterDefaultTasks registers all built-in task plugins with the registry.
func (r *Registry) RegisterDefaultTasks() {
	r.RegisterTask(httprequest.NewPlugin())
	r.RegisterTask(transform.NewPlugin())
	r.RegisterTask(log.NewPlugin())

	// Triggers
	r.RegisterTask(schedule.NewPlugin())
	r.RegisterTask(webhook.NewPlugin())
}
