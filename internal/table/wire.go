package table

import (
	"database/sql"

	"go.uber.org/zap"

	"kalpa/internal/table/controller"
	"kalpa/internal/table/repository"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.TableController {
	return controller.NewTableController(repository.NewMySQLTableRepository(db), logger)
}
