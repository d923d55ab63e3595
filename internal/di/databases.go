// Package di provides dependency injection for database connections.
package di

import (
	"fmt"
	"path/filepath"

	"github.com/expenseoracle/oracle/internal/config"
	"github.com/expenseoracle/oracle/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. oracle.db - Users, expenses, budgets, profiles and the autonomous action audit trail
	oracleDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "oracle.db"),
		Profile: database.ProfileLedger, // Audit rows must survive crashes
		Name:    "oracle",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize oracle database: %w", err)
	}
	container.OracleDB = oracleDB

	// 2. cache.db - Memoized pipeline outputs
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		oracleDB.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	for _, db := range []*database.DB{oracleDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Msg("All databases initialized and schemas applied")

	return container, nil
}
