package ports

import (
	"context"

	"craftcheck/domain/crafting"
	"craftcheck/models"
)

// ResultLedger stores validation outcomes for auditing
type ResultLedger interface {
	// Record persists one outcome
	Record(ctx context.Context, rec *models.ValidationRecord) error

	// Recent returns the newest records for a discipline, newest first
	Recent(ctx context.Context, d crafting.Discipline, limit int) ([]*models.ValidationRecord, error)

	// Summary aggregates every record per discipline
	Summary(ctx context.Context) ([]*models.DisciplineSummary, error)
}
