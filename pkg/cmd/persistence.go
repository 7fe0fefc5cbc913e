// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/flowstudio/pkg/persistence"
	"github.com/dukex/flowstudio/pkg/persistence/file"
	"github.com/dukex/flowstudio/pkg/persistence/postgresql"
	"github.com/dukex/flowstudio/pkg/persistence/redis"
)

var supportedPersistenceProviders = []string{"file", "postgres", "postgresql", "redis", "rediss"}

// NewPersistence selects the backend from the scheme of databaseURL. Unknown schemes and bare
// paths use the file backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch provider := parsePersistenceProvider(databaseURL); provider {
	case "postgres", "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgresql persistence: %w", err)
		}

		return store, nil
	case "redis", "rediss":
		store, err := redis.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis persistence: %w", err)
		}

		return store, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
