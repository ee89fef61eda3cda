package memory

import (
	"context"
	"sort"
	"sync"

	"craftcheck/domain/crafting"
	"craftcheck/models"
	"craftcheck/ports"
)

// ResultLedger keeps validation records in memory, bounded per discipline
type ResultLedger struct {
	mu       sync.RWMutex
	capacity int
	records  map[crafting.Discipline][]*models.ValidationRecord
	totals   map[crafting.Discipline]*models.DisciplineSummary
}

// DefaultCapacity is how many records per discipline are retained
const DefaultCapacity = 1000

// NewResultLedger creates a ledger; capacity <= 0 uses DefaultCapacity
func NewResultLedger(capacity int) *ResultLedger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ResultLedger{
		capacity: capacity,
		records:  make(map[crafting.Discipline][]*models.ValidationRecord),
		totals:   make(map[crafting.Discipline]*models.DisciplineSummary),
	}
}

// Record appends a record, evicting the oldest past capacity.
// Summary totals include evicted records.
func (l *ResultLedger) Record(ctx context.Context, rec *models.ValidationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *rec

	l.mu.Lock()
	defer l.mu.Unlock()

	list := append(l.records[rec.Discipline], &cp)
	if len(list) > l.capacity {
		list = list[len(list)-l.capacity:]
	}
	l.records[rec.Discipline] = list

	s, ok := l.totals[rec.Discipline]
	if !ok {
		s = &models.DisciplineSummary{Discipline: rec.Discipline}
		l.totals[rec.Discipline] = s
	}
	n := float64(s.Total)
	s.MeanConfidence = (s.MeanConfidence*n + rec.Confidence) / (n + 1)
	s.MeanLatencyMs = (s.MeanLatencyMs*n + rec.LatencyMs) / (n + 1)
	s.Total++
	if rec.Valid {
		s.ValidCount++
	}
	if rec.Error != "" {
		s.ErrorCount++
	}
	return nil
}

// Recent returns up to limit records, newest first
func (l *ResultLedger) Recent(ctx context.Context, d crafting.Discipline, limit int) ([]*models.ValidationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	list := l.records[d]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]*models.ValidationRecord, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *list[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Summary returns per-discipline totals sorted by discipline
func (l *ResultLedger) Summary(ctx context.Context) ([]*models.DisciplineSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	out := make([]*models.DisciplineSummary, 0, len(l.totals))
	for _, s := range l.totals {
		cp := *s
		out = append(out, &cp)
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Discipline < out[j].Discipline })
	return out, nil
}

var _ ports.ResultLedger = (*ResultLedger)(nil)
