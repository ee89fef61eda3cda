package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
)

func TestNewValidationRecord(t *testing.T) {
	res := classifier.NewResult(crafting.DisciplineAlchemy, 0.8, 0.5)
	rec := NewValidationRecord(res, 1500*time.Microsecond)

	assert.Equal(t, 7, int(rec.ID.Version()))
	assert.Equal(t, crafting.DisciplineAlchemy, rec.Discipline)
	assert.True(t, rec.Valid)
	assert.InDelta(t, 1.5, rec.LatencyMs, 1e-9)
	assert.Equal(t, time.UTC, rec.CreatedAt.Location())
	assert.Equal(t, res, rec.Result())
}

func TestNewValidationRecordKeepsError(t *testing.T) {
	res := classifier.ErrorResult(crafting.DisciplineRefining, errors.New("boom"))
	rec := NewValidationRecord(res, 0)

	assert.False(t, rec.Valid)
	assert.Equal(t, "boom", rec.Error)
	assert.Equal(t, res, rec.Result())
}

func TestRecordIDsAreOrdered(t *testing.T) {
	a := NewValidationRecord(classifier.Result{Discipline: crafting.DisciplineSmithing}, 0)
	b := NewValidationRecord(classifier.Result{Discipline: crafting.DisciplineSmithing}, 0)
	assert.Less(t, a.ID.String(), b.ID.String())
}
