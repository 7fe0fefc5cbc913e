package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/persistence"
)

const selectFlows = `
	SELECT
		properties
	  , nodes
	  , edges
	  , created_at
	  , updated_at
	  , deleted_at
	FROM flows
`

// FlowRepository handles flow-related database operations.
type FlowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewFlowRepository creates a new flow repository.
func NewFlowRepository(db *sql.DB, logger *slog.Logger) *FlowRepository {
	return &FlowRepository{db: db, logger: logger}
}

// GetAll returns all flows ordered by namespace and id.
func (r *FlowRepository) GetAll(ctx context.Context) ([]*models.Flow, error) {
	rows, err := r.db.QueryContext(ctx, selectFlows+`
		WHERE deleted_at IS NULL
		ORDER BY namespace, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query flows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	flows := make([]*models.Flow, 0)

	for rows.Next() {
		flow, err := scanFlow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flow: %w", err)
		}

		flows = append(flows, flow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating flows: %w", err)
	}

	return flows, nil
}

// GetByID returns a flow that is not deleted.
func (r *FlowRepository) GetByID(ctx context.Context, namespace, id string) (*models.Flow, error) {
	row := r.db.QueryRowContext(ctx, selectFlows+`
		WHERE namespace = $1 AND id = $2 AND deleted_at IS NULL
	`, namespace, id)

	flow, err := scanFlow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewFlowError("FlowByID", namespace, id, persistence.ErrFlowNotFound)
		}

		return nil, fmt.Errorf("failed to get flow: %w", err)
	}

	return flow, nil
}

// Save upserts a flow. The creation time of an existing row is kept and written back to the flow.
func (r *FlowRepository) Save(ctx context.Context, flow *models.Flow) error {
	now := time.Now().UTC()
	if flow.CreatedAt.IsZero() {
		flow.CreatedAt = now
	}

	flow.UpdatedAt = now

	propertiesJSON, err := json.Marshal(flow.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}

	nodesJSON, err := json.Marshal(nonNil(flow.Data.Nodes))
	if err != nil {
		return fmt.Errorf("failed to marshal nodes: %w", err)
	}

	edgesJSON, err := json.Marshal(nonNil(flow.Data.Edges))
	if err != nil {
		return fmt.Errorf("failed to marshal edges: %w", err)
	}

	query := `
		INSERT INTO flows (namespace, id, description, properties, nodes, edges, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL)
		ON CONFLICT (namespace, id) DO UPDATE SET
			description = EXCLUDED.description,
			properties = EXCLUDED.properties,
			nodes = EXCLUDED.nodes,
			edges = EXCLUDED.edges,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
		RETURNING created_at
	`

	err = r.db.QueryRowContext(ctx, query,
		flow.Properties.Namespace,
		flow.Properties.ID,
		flow.Properties.Description,
		propertiesJSON,
		nodesJSON,
		edgesJSON,
		flow.CreatedAt,
		flow.UpdatedAt,
	).Scan(&flow.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}

	return nil
}

// Delete soft deletes a flow by setting deleted_at timestamp.
func (r *FlowRepository) Delete(ctx context.Context, namespace, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE flows SET deleted_at = NOW() WHERE namespace = $1 AND id = $2 AND deleted_at IS NULL`,
		namespace, id)
	if err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return persistence.NewFlowError("Delete", namespace, id, persistence.ErrFlowNotFound)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFlow(row scanner) (*models.Flow, error) {
	var (
		flow      models.Flow
		deletedAt sql.NullTime
	)

	var propertiesJSON, nodesJSON, edgesJSON []byte

	err := row.Scan(&propertiesJSON, &nodesJSON, &edgesJSON, &flow.CreatedAt, &flow.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(propertiesJSON, &flow.Properties)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal properties: %w", err)
	}

	err = json.Unmarshal(nodesJSON, &flow.Data.Nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal nodes: %w", err)
	}

	err = json.Unmarshal(edgesJSON, &flow.Data.Edges)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal edges: %w", err)
	}

	if deletedAt.Valid {
		flow.DeletedAt = &deletedAt.Time
	}

	return &flow, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}
