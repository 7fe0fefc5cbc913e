package serializer

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dukex/flowstudio/pkg/models"
)

// Codec encodes persisted flows.
type Codec interface {
	Marshal(flow *models.Flow) ([]byte, error)
	Unmarshal(data []byte) (*models.Flow, error)
	ContentType() string
}

// JSONCodec is the storage format of flows.
type JSONCodec struct{}

func (JSONCodec) Marshal(flow *models.Flow) ([]byte, error) {
	data, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal flow: %w", err)
	}

	return data, nil
}

func (JSONCodec) Unmarshal(data []byte) (*models.Flow, error) {
	var flow models.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow: %w", err)
	}

	return &flow, nil
}

func (JSONCodec) ContentType() string {
	return "application/json"
}

// YAMLCodec is used for flow export and import.
type YAMLCodec struct{}

func (YAMLCodec) Marshal(flow *models.Flow) ([]byte, error) {
	data, err := yaml.Marshal(flow)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal flow: %w", err)
	}

	return data, nil
}

func (YAMLCodec) Unmarshal(data []byte) (*models.Flow, error) {
	var flow models.Flow
	if err := yaml.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow: %w", err)
	}

	return &flow, nil
}

func (YAMLCodec) ContentType() string {
	return "application/yaml"
}

// CodecFor returns the codec of a format name ("json" or "yaml").
func CodecFor(format string) (Codec, error) {
	switch format {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported flow format: %s", format)
	}
}
