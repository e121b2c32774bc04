package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/repository"
)

// NewRepositories wires the order mirror and export history onto one pool
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("postgres")
	return &repository.Repositories{
		Order:         NewOrderRepository(db, logger.With(zap.String("table", "orders"))),
		ExportHistory: NewExportHistoryRepository(db, logger.With(zap.String("table", "export_history"))),
	}
}
