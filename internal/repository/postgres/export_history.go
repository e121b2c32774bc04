package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/domain"
)

type exportHistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExportHistoryRepository creates a new export history repository
func NewExportHistoryRepository(db *sql.DB, logger *zap.Logger) *exportHistoryRepository {
	return &exportHistoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *exportHistoryRepository) Create(ctx context.Context, record *domain.ExportRecord) error {
	query := `
		INSERT INTO export_history (id, filename, exported_at, filters, order_count, row_count, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	filtersJSON, err := json.Marshal(record.Filters)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.Filename,
		record.ExportedAt,
		filtersJSON,
		record.OrderCount,
		record.RowCount,
		record.Location,
	)

	if err != nil {
		r.logger.Error("Failed to create export history record", zap.String("filename", record.Filename), zap.Error(err))
		return err
	}

	return nil
}

// List returns export records newest first
func (r *exportHistoryRepository) List(ctx context.Context, limit, offset int) ([]*domain.ExportRecord, error) {
	query := `
		SELECT id, filename, exported_at, filters, order_count, row_count, location
		FROM export_history
		ORDER BY exported_at DESC
		LIMIT $1 OFFSET $2
	`

	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list export history", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var records []*domain.ExportRecord
	for rows.Next() {
		var record domain.ExportRecord
		var filtersJSON []byte

		err := rows.Scan(
			&record.ID,
			&record.Filename,
			&record.ExportedAt,
			&filtersJSON,
			&record.OrderCount,
			&record.RowCount,
			&record.Location,
		)
		if err != nil {
			r.logger.Error("Failed to scan export history record", zap.Error(err))
			return nil, err
		}

		if len(filtersJSON) > 0 {
			if err := json.Unmarshal(filtersJSON, &record.Filters); err != nil {
				return nil, err
			}
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
