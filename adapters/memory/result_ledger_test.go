package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
	"craftcheck/models"
)

func record(d crafting.Discipline, p float64) *models.ValidationRecord {
	return models.NewValidationRecord(classifier.NewResult(d, p, 0.5), 2*time.Millisecond)
}

func TestLedgerRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	l := NewResultLedger(0)
	for _, p := range []float64{0.1, 0.2, 0.3} {
		require.NoError(t, l.Record(ctx, record(crafting.DisciplineSmithing, p)))
	}
	require.NoError(t, l.Record(ctx, record(crafting.DisciplineRefining, 0.9)))

	recent, err := l.Recent(ctx, crafting.DisciplineSmithing, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 0.3, recent[0].Probability)
	assert.Equal(t, 0.2, recent[1].Probability)

	all, err := l.Recent(ctx, crafting.DisciplineSmithing, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := l.Recent(ctx, crafting.DisciplineAdornment, 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLedgerCapacityEvictsButSummaryCounts(t *testing.T) {
	ctx := context.Background()
	l := NewResultLedger(2)
	for _, p := range []float64{0.9, 0.8, 0.1} {
		require.NoError(t, l.Record(ctx, record(crafting.DisciplineAlchemy, p)))
	}
	errRec := models.NewValidationRecord(classifier.ErrorResult(crafting.DisciplineAlchemy, errors.New("boom")), 0)
	require.NoError(t, l.Record(ctx, errRec))

	recent, err := l.Recent(ctx, crafting.DisciplineAlchemy, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	summary, err := l.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	s := summary[0]
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.ValidCount)
	assert.Equal(t, 1, s.ErrorCount)
	assert.InDelta(t, (0.9+0.8+0.9+1.0)/4, s.MeanConfidence, 1e-9)
	assert.InDelta(t, 1.5, s.MeanLatencyMs, 1e-9)
}

func TestLedgerCopiesRecords(t *testing.T) {
	ctx := context.Background()
	l := NewResultLedger(5)
	rec := record(crafting.DisciplineEngineering, 0.7)
	require.NoError(t, l.Record(ctx, rec))
	rec.Probability = 0

	recent, err := l.Recent(ctx, crafting.DisciplineEngineering, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.7, recent[0].Probability)
}

func TestLedgerHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewResultLedger(1)
	assert.Error(t, l.Record(ctx, record(crafting.DisciplineSmithing, 0.5)))
}
