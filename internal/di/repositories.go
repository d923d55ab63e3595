// Package di provides dependency injection for repository implementations.
package di

import (
	"fmt"

	"github.com/expenseoracle/oracle/internal/cache"
	"github.com/expenseoracle/oracle/internal/modules/audit"
	"github.com/expenseoracle/oracle/internal/modules/expenses"
	"github.com/expenseoracle/oracle/internal/modules/profiles"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates all repositories over the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.OracleDB == nil || container.CacheDB == nil {
		return fmt.Errorf("databases must be initialized before repositories")
	}

	container.ExpenseRepo = expenses.NewRepository(container.OracleDB.Conn(), log)
	container.ProfileRepo = profiles.NewRepository(container.OracleDB.Conn(), log)
	container.AuditRepo = audit.NewRepository(container.OracleDB.Conn(), log)
	container.CacheRepo = cache.NewRepository(container.CacheDB.Conn())

	log.Info().Msg("Repositories initialized")
	return nil
}
