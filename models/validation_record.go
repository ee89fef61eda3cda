package models

import (
	"time"

	"github.com/google/uuid"

	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
)

// ValidationRecord is one persisted validation outcome
type ValidationRecord struct {
	ID          uuid.UUID           `json:"id" db:"id"`
	Discipline  crafting.Discipline `json:"discipline" db:"discipline"`
	Valid       bool                `json:"valid" db:"valid"`
	Probability float64             `json:"probability" db:"probability"`
	Confidence  float64             `json:"confidence" db:"confidence"`
	Error       string              `json:"error,omitempty" db:"error"`
	LatencyMs   float64             `json:"latency_ms" db:"latency_ms"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
}

// NewValidationRecord captures a result with a time-ordered id
func NewValidationRecord(r classifier.Result, latency time.Duration) *ValidationRecord {
	// v7 keeps ids sortable by creation time; v4 only if the clock source fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &ValidationRecord{
		ID:          id,
		Discipline:  r.Discipline,
		Valid:       r.Valid,
		Probability: r.Probability,
		Confidence:  r.Confidence,
		Error:       r.Error,
		LatencyMs:   float64(latency.Nanoseconds()) / 1e6,
		CreatedAt:   time.Now().UTC(),
	}
}

// Result converts the record back into the value the caller saw
func (v *ValidationRecord) Result() classifier.Result {
	return classifier.Result{
		Discipline:  v.Discipline,
		Valid:       v.Valid,
		Probability: v.Probability,
		Confidence:  v.Confidence,
		Error:       v.Error,
	}
}

// DisciplineSummary aggregates the ledger for one discipline
type DisciplineSummary struct {
	Discipline     crafting.Discipline `json:"discipline" db:"discipline"`
	Total          int                 `json:"total" db:"total"`
	ValidCount     int                 `json:"valid_count" db:"valid_count"`
	ErrorCount     int                 `json:"error_count" db:"error_count"`
	MeanConfidence float64             `json:"mean_confidence" db:"mean_confidence"`
	MeanLatencyMs  float64             `json:"mean_latency_ms" db:"mean_latency_ms"`
}
