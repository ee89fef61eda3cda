package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"craftcheck/domain/crafting"
	"craftcheck/internal/errors"
	"craftcheck/models"
	"craftcheck/ports"
)

// ResultLedgerImpl stores validation records in PostgreSQL
type ResultLedgerImpl struct {
	db *sqlx.DB
}

// NewResultLedger creates a new PostgreSQL result ledger
func NewResultLedger(db *sqlx.DB) *ResultLedgerImpl {
	return &ResultLedgerImpl{db: db}
}

// Record inserts one validation record
func (l *ResultLedgerImpl) Record(ctx context.Context, rec *models.ValidationRecord) error {
	_, err := l.db.NamedExecContext(ctx, `
		INSERT INTO validation_results (
			id, discipline, valid, probability, confidence, error, latency_ms, created_at
		) VALUES (
			:id, :discipline, :valid, :probability, :confidence, :error, :latency_ms, :created_at
		)
	`, rec)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// Recent returns the newest records for a discipline
func (l *ResultLedgerImpl) Recent(ctx context.Context, d crafting.Discipline, limit int) ([]*models.ValidationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []*models.ValidationRecord
	err := l.db.SelectContext(ctx, &records, `
		SELECT id, discipline, valid, probability, confidence, error, latency_ms, created_at
		FROM validation_results
		WHERE discipline = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, d, limit)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return records, nil
}

// Summary aggregates the ledger per discipline
func (l *ResultLedgerImpl) Summary(ctx context.Context) ([]*models.DisciplineSummary, error) {
	var out []*models.DisciplineSummary
	err := l.db.SelectContext(ctx, &out, `
		SELECT
			discipline,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE valid) AS valid_count,
			COUNT(*) FILTER (WHERE error <> '') AS error_count,
			COALESCE(AVG(confidence), 0) AS mean_confidence,
			COALESCE(AVG(latency_ms), 0) AS mean_latency_ms
		FROM validation_results
		GROUP BY discipline
		ORDER BY discipline
	`)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return out, nil
}

var _ ports.ResultLedger = (*ResultLedgerImpl)(nil)
