// Package postgresql provides PostgreSQL persistence for flows.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// registers the "postgres" driver.
	_ "github.com/lib/pq"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/persistence"
	"github.com/dukex/flowstudio/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db       *sql.DB
	logger   *slog.Logger
	flowRepo *FlowRepository
}

// NewPersistence creates a new PostgreSQL persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	postgres := &Persistence{
		db:       database,
		logger:   logger,
		flowRepo: NewFlowRepository(database, logger),
	}

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Flows returns all flows that are not deleted.
func (p *Persistence) Flows(ctx context.Context) ([]*models.Flow, error) {
	return p.flowRepo.GetAll(ctx)
}

// FlowByID returns a flow by namespace and id.
func (p *Persistence) FlowByID(ctx context.Context, namespace, id string) (*models.Flow, error) {
	return p.flowRepo.GetByID(ctx, namespace, id)
}

// SaveFlow upserts a flow.
func (p *Persistence) SaveFlow(ctx context.Context, flow *models.Flow) error {
	if err := persistence.ValidateFlow(flow); err != nil {
		return err
	}

	return p.flowRepo.Save(ctx, flow)
}

// DeleteFlow soft deletes a flow by setting deleted_at timestamp.
func (p *Persistence) DeleteFlow(ctx context.Context, namespace, id string) error {
	return p.flowRepo.Delete(ctx, namespace, id)
}
