package cmd

import (
	"fmt"
	"log/slog"

	"github.com/dukex/flowstudio/pkg/registry"
)

// NewRegistry registers the built-in tasks and every shared-object plugin under pluginsPath.
func NewRegistry(logger *slog.Logger, pluginsPath string) (*registry.Registry, error) {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultTasks()

	if pluginsPath == "" {
		return reg, nil
	}

	plugins, err := reg.LoadTaskPlugins(pluginsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load task plugins: %w", err)
	}

	for _, plugin := range plugins {
		reg.RegisterTask(plugin)
	}

	return reg, nil
}
