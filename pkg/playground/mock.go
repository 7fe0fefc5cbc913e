package playground

import (
	"context"
	"time"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/protocol"
)

// DefaultLatency is the artificial delay of MockExecutor.
const DefaultLatency = 800 * time.Millisecond

// PluginLookup resolves the plugin of a config "type".
type PluginLookup interface {
	Plugin(pluginType string) (protocol.TaskPlugin, bool)
}

// MockExecutor fakes execution results from plugin samples after an artificial latency.
type MockExecutor struct {
	plugins PluginLookup
	latency time.Duration
}

func NewMockExecutor(plugins PluginLookup, latency time.Duration) *MockExecutor {
	return &MockExecutor{
		plugins: plugins,
		latency: latency,
	}
}

func (m *MockExecutor) Execute(ctx context.Context, node models.Node) (*models.PlaygroundExecutionData, error) {
	if m.latency > 0 {
		timer := time.NewTimer(m.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if m.plugins != nil {
		if taskPlugin, ok := m.plugins.Plugin(node.PluginType()); ok {
			if sampler, ok := taskPlugin.(protocol.PlaygroundSampler); ok {
				if sample := sampler.Sample(node.Data.Config.Clone()); sample != nil {
					return sample, nil
				}
			}
		}
	}

	return genericResult(node), nil
}

func genericResult(node models.Node) *models.PlaygroundExecutionData {
	return &models.PlaygroundExecutionData{
		NodeID:  node.ID,
		Status:  models.PlaygroundStatusSuccess,
		Outputs: map[string]any{"status": "completed"},
		Metrics: []models.MetricValue{},
		Logs: []models.LogEntry{
			{Timestamp: time.Now().UTC(), Level: "INFO", Message: "Task completed"},
		},
	}
}
