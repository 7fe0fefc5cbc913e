package registry

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowstudio/pkg/models"
)

func TestRegisterDefaultTasks(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(slog.Default())

	message, ok := reg.HealthCheck()
	assert.False(t, ok)
	assert.Equal(t, "No task plugins registered", message)

	reg.RegisterDefaultTasks()

	types := make([]string, 0)
	for _, metadata := range reg.List() {
		types = append(types, metadata.Type)
	}

	assert.Equal(t, []string{"httprequest", "log", "transform", "trigger:scheduler", "trigger:webhook"}, types)

	message, ok = reg.HealthCheck()
	assert.True(t, ok)
	assert.Equal(t, "5 task plugins registered", message)
}

func TestRegistry_Get(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(slog.Default())
	reg.RegisterDefaultTasks()

	tests := []struct {
		pluginType  string
		wantOK      bool
		wantTrigger bool
	}{
		{pluginType: "log", wantOK: true},
		{pluginType: "trigger:scheduler", wantOK: true, wantTrigger: true},
		{pluginType: "trigger:webhook", wantOK: true, wantTrigger: true},
		{pluginType: "Log", wantOK: false},
		{pluginType: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.pluginType, func(t *testing.T) {
			t.Parallel()

			metadata, ok := reg.Get(tt.pluginType)
			require.Equal(t, tt.wantOK, ok)

			if !ok {
				assert.Nil(t, metadata)

				return
			}

			assert.Equal(t, tt.pluginType, metadata.Type)
			assert.Equal(t, tt.wantTrigger, metadata.Trigger)
		})
	}
}

func TestLoadTaskPlugins_MissingDirectory(t *testing.T) {
	t.Parallel()

	plugins, err := NewRegistry(slog.Default()).LoadTaskPlugins(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, plugins)
}

func TestVariantCapabilities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		variant   models.Variant
		input     bool
		output    bool
		resizable bool
		taskLike  bool
		form      FormKind
	}{
		{variant: models.VariantTask, input: true, output: true, taskLike: true, form: FormPlugin},
		{variant: models.VariantErrorHandler, input: true, output: true, taskLike: true, form: FormPlugin},
		{variant: models.VariantFinally, input: true, output: true, taskLike: true, form: FormPlugin},
		{variant: models.VariantTrigger, form: FormPlugin},
		{variant: models.VariantInput, form: FormInput},
		{variant: models.VariantOutput, form: FormOutput},
		{variant: models.VariantNote, resizable: true, form: FormNote},
	}

	require.Len(t, tests, len(models.Variants()))

	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			t.Parallel()

			capabilities, ok := Lookup(tt.variant)
			require.True(t, ok)

			assert.Equal(t, tt.input, capabilities.HasInputPort)
			assert.Equal(t, tt.output, capabilities.HasOutputPort)
			assert.Equal(t, tt.resizable, capabilities.IsResizable)
			assert.Equal(t, tt.taskLike, capabilities.IsTaskLike())
			assert.Equal(t, tt.form, capabilities.Form)

			first := capabilities.DefaultConfig()
			first["mutated"] = true
			assert.NotContains(t, capabilities.DefaultConfig(), "mutated")
		})
	}
}

func TestParseVariant(t *testing.T) {
	t.Parallel()

	variant, ok := ParseVariant("note")
	assert.True(t, ok)
	assert.Equal(t, models.VariantNote, variant)

	_, ok = ParseVariant("conditional")
	assert.False(t, ok)

	assert.Panics(t, func() { MustLookup("conditional") })
}
