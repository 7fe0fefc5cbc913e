// Package registry provides the node variant capability table and the plugin metadata catalog.
package registry

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"plugin"
	"sort"
	"strings"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/protocol"
)

// Catalog is the read-only plugin catalog consulted by the properties panel and the playground.
type Catalog interface {
	Get(pluginType string) (*models.TaskMetadata, bool)
	List() []*models.TaskMetadata
}

// Registry holds the registered task plugins keyed by plugin type.
type Registry struct {
	logger  *slog.Logger
	plugins map[string]protocol.TaskPlugin
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:  log,
		plugins: make(map[string]protocol.TaskPlugin),
	}
}

func (r *Registry) RegisterTask(taskPlugin protocol.TaskPlugin) {
	r.plugins[taskPlugin.ID()] = taskPlugin
}

// LoadTaskPlugins opens every shared object under <pluginsPath>/tasks and returns the exported "Task" symbols.
func (r *Registry) LoadTaskPlugins(pluginsPath string) ([]protocol.TaskPlugin, error) {
	return loadPlugin[protocol.TaskPlugin](r.logger, pluginsPath, "Task")
}

// Plugin returns the registered plugin for a type.
func (r *Registry) Plugin(pluginType string) (protocol.TaskPlugin, bool) {
	taskPlugin, ok := r.plugins[pluginType]

	return taskPlugin, ok
}

// Get looks up the metadata of a plugin type by exact string match.
func (r *Registry) Get(pluginType string) (*models.TaskMetadata, bool) {
	taskPlugin, ok := r.plugins[pluginType]
	if !ok {
		return nil, false
	}

	metadata := taskPlugin.Metadata()
	if metadata.Type == "" {
		metadata.Type = taskPlugin.ID()
	}

	return metadata, true
}

// List returns the metadata of every registered plugin sorted by type.
func (r *Registry) List() []*models.TaskMetadata {
	types := make([]string, 0, len(r.plugins))
	for pluginType := range r.plugins {
		types = append(types, pluginType)
	}

	sort.Strings(types)

	list := make([]*models.TaskMetadata, 0, len(types))
	for _, pluginType := range types {
		metadata, _ := r.Get(pluginType)
		list = append(list, metadata)
	}

	return list
}

// HealthCheck reports whether any plugin is registered.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.plugins) == 0 {
		return "No task plugins registered", false
	}

	return fmt.Sprintf("%d task plugins registered", len(r.plugins)), true
}

func loadPlugin[T any](logger *slog.Logger, pluginsPath string, symbolName string) ([]T, error) {
	rootPath := filepath.Join(pluginsPath, strings.ToLower(symbolName)+"s")

	if _, err := os.Stat(rootPath); os.IsNotExist(err) {
		return []T{}, nil
	}

	var pluginPathList []string

	err := filepath.WalkDir(rootPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() && strings.HasSuffix(path, ".so") {
			pluginPathList = append(pluginPathList, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list plugins in %s: %w", rootPath, err)
	}

	l := logger.With(slog.String("path", pluginsPath), slog.String("type", symbolName))
	l.Info("Loading plugins")

	pluginList := make([]T, 0, len(pluginPathList))
	for _, p := range pluginPathList {
		plg, err := plugin.Open(p)
		if err != nil {
			return nil, fmt.Errorf("failed to open plugin %s: %w", p, err)
		}

		v, err := plg.Lookup(symbolName)
		if err != nil {
			return nil, fmt.Errorf("failed to lookup %s in plugin %s: %w", symbolName, p, err)
		}

		castV, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("plugin %s does not export a valid %s", p, symbolName)
		}

		pluginList = append(pluginList, castV)

		l.Info("Loaded task plugin", slog.String("plugin", p))
	}

	return pluginList, nil
}
