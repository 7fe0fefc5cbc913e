// Package file provides file-based persistence for flows.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/persistence"
	"github.com/dukex/flowstudio/pkg/serializer"
)

const flowsDir = "flows"

// Persistence implements the persistence.Persistence interface using the file system.
// Flows are stored as <root>/flows/<namespace>/<id>.json.
type Persistence struct {
	root  string
	codec serializer.JSONCodec
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Flows returns every stored flow, ordered by namespace and id.
func (fp *Persistence) Flows(ctx context.Context) ([]*models.Flow, error) {
	flows := make([]*models.Flow, 0)

	base := filepath.Join(fp.root, flowsDir)

	err := filepath.WalkDir(base, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}

			return err
		}

		if entry.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		flow, err := fp.read(path)
		if err != nil {
			return err
		}

		flows = append(flows, flow)

		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].Key() < flows[j].Key()
	})

	return flows, nil
}

// FlowByID returns a stored flow.
func (fp *Persistence) FlowByID(_ context.Context, namespace, id string) (*models.Flow, error) {
	path, err := fp.path(namespace, id)
	if err != nil {
		return nil, persistence.NewFlowError("FlowByID", namespace, id, err)
	}

	flow, err := fp.read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewFlowError("FlowByID", namespace, id, persistence.ErrFlowNotFound)
		}

		return nil, persistence.NewFlowError("FlowByID", namespace, id, err)
	}

	return flow, nil
}

// SaveFlow writes a flow, keeping the creation time of an existing file.
func (fp *Persistence) SaveFlow(_ context.Context, flow *models.Flow) error {
	if err := persistence.ValidateFlow(flow); err != nil {
		return err
	}

	namespace, id := flow.Properties.Namespace, flow.Properties.ID

	path, err := fp.path(namespace, id)
	if err != nil {
		return persistence.NewFlowError("Save", namespace, id, err)
	}

	err = os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return fmt.Errorf("failed to create flow directory: %w", err)
	}

	now := time.Now().UTC()

	if existing, err := fp.read(path); err == nil {
		flow.CreatedAt = existing.CreatedAt
	} else if flow.CreatedAt.IsZero() {
		flow.CreatedAt = now
	}

	flow.UpdatedAt = now

	data, err := fp.codec.Marshal(flow)
	if err != nil {
		return persistence.NewFlowError("Save", namespace, id, err)
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write flow file: %w", err)
	}

	return nil
}

// DeleteFlow removes a stored flow.
func (fp *Persistence) DeleteFlow(_ context.Context, namespace, id string) error {
	path, err := fp.path(namespace, id)
	if err != nil {
		return persistence.NewFlowError("Delete", namespace, id, err)
	}

	err = os.Remove(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.NewFlowError("Delete", namespace, id, persistence.ErrFlowNotFound)
		}

		return fmt.Errorf("failed to delete flow file: %w", err)
	}

	return nil
}

func (fp *Persistence) path(namespace, id string) (string, error) {
	for _, part := range []string{namespace, id} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", persistence.ErrInvalidFlow
		}
	}

	return filepath.Clean(filepath.Join(fp.root, flowsDir, namespace, id+".json")), nil
}

func (fp *Persistence) read(path string) (*models.Flow, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	return fp.codec.Unmarshal(data)
}
