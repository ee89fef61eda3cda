package app

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
	manager "craftcheck/internal/classifier"
	"craftcheck/internal/errors"
	"craftcheck/internal/preprocess"
	"craftcheck/models"
	"craftcheck/ports"
)

// DefaultBatchConcurrency bounds how many batch items run at once
const DefaultBatchConcurrency = 8

// ValidationService fronts the classifier manager for the outer surfaces and
// records every outcome in the ledger
type ValidationService struct {
	manager *manager.Manager
	ledger  ports.ResultLedger
	limit   int

	// one permit per discipline: a backend never sees concurrent calls from a batch
	disciplineSem map[crafting.Discipline]*semaphore.Weighted
}

// NewValidationService creates the service; ledger may be nil
func NewValidationService(m *manager.Manager, ledger ports.ResultLedger) *ValidationService {
	sems := make(map[crafting.Discipline]*semaphore.Weighted, len(crafting.AllDisciplines()))
	for _, d := range crafting.AllDisciplines() {
		sems[d] = semaphore.NewWeighted(1)
	}
	return &ValidationService{
		manager:       m,
		ledger:        ledger,
		limit:         DefaultBatchConcurrency,
		disciplineSem: sems,
	}
}

// Manager returns the underlying classifier manager
func (s *ValidationService) Manager() *manager.Manager {
	return s.manager
}

// ValidateSmithing validates and records a smithing layout
func (s *ValidationService) ValidateSmithing(ctx context.Context, in crafting.SmithingInput) classifier.Result {
	return s.run(ctx, crafting.DisciplineSmithing, func() classifier.Result { return s.manager.ValidateSmithing(in) })
}

// ValidateAdornment validates and records an adornment layout
func (s *ValidationService) ValidateAdornment(ctx context.Context, in crafting.AdornmentInput) classifier.Result {
	return s.run(ctx, crafting.DisciplineAdornment, func() classifier.Result { return s.manager.ValidateAdornment(in) })
}

// ValidateAlchemy validates and records an alchemy layout
func (s *ValidationService) ValidateAlchemy(ctx context.Context, in crafting.AlchemyInput) classifier.Result {
	return s.run(ctx, crafting.DisciplineAlchemy, func() classifier.Result { return s.manager.ValidateAlchemy(in) })
}

// ValidateRefining validates and records a refining layout
func (s *ValidationService) ValidateRefining(ctx context.Context, in crafting.RefiningInput) classifier.Result {
	return s.run(ctx, crafting.DisciplineRefining, func() classifier.Result { return s.manager.ValidateRefining(in) })
}

// ValidateEngineering validates and records an engineering layout
func (s *ValidationService) ValidateEngineering(ctx context.Context, in crafting.EngineeringInput) classifier.Result {
	return s.run(ctx, crafting.DisciplineEngineering, func() classifier.Result { return s.manager.ValidateEngineering(in) })
}

// Validate dispatches a tagged request to its typed entry point
func (s *ValidationService) Validate(ctx context.Context, req LayoutRequest) classifier.Result {
	if err := req.Check(); err != nil {
		return classifier.ErrorResult(req.Discipline, err)
	}
	switch req.Discipline {
	case crafting.DisciplineSmithing:
		return s.ValidateSmithing(ctx, *req.Smithing)
	case crafting.DisciplineAdornment:
		return s.ValidateAdornment(ctx, *req.Adornment)
	case crafting.DisciplineAlchemy:
		return s.ValidateAlchemy(ctx, *req.Alchemy)
	case crafting.DisciplineRefining:
		return s.ValidateRefining(ctx, *req.Refining)
	default:
		return s.ValidateEngineering(ctx, *req.Engineering)
	}
}

// ValidateBatch validates every request concurrently, at most one in flight per
// discipline. Results keep the request order. Malformed requests yield error
// results; the returned error is non-nil only when ctx ended the batch early.
func (s *ValidationService) ValidateBatch(ctx context.Context, reqs []LayoutRequest) ([]classifier.Result, error) {
	start := time.Now()
	results := make([]classifier.Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, req := range reqs {
		i, req := i, req
		if err := req.Check(); err != nil {
			results[i] = classifier.ErrorResult(req.Discipline, err)
			continue
		}
		g.Go(func() error {
			sem := s.disciplineSem[req.Discipline]
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i] = classifier.ErrorResult(req.Discipline, err)
				return nil
			}
			defer sem.Release(1)
			results[i] = s.Validate(gctx, req)
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("[ValidationService] Batch of %d validated in %v", len(reqs), time.Since(start))
	return results, ctx.Err()
}

// run times a validation and records it; ledger failures never change the result
func (s *ValidationService) run(ctx context.Context, d crafting.Discipline, validate func() classifier.Result) classifier.Result {
	start := time.Now()
	res := validate()
	if s.ledger != nil {
		rec := models.NewValidationRecord(res, time.Since(start))
		if err := s.ledger.Record(ctx, rec); err != nil {
			log.Printf("[ValidationService] %s: failed to record result: %v", d, err)
		}
	}
	return res
}

// Status returns the manager status snapshot
func (s *ValidationService) Status() map[crafting.Discipline]classifier.Status {
	return s.manager.GetStatus()
}

// UpdateConfig reconfigures one discipline
func (s *ValidationService) UpdateConfig(d crafting.Discipline, u classifier.ConfigUpdate) error {
	if !d.IsValid() {
		return errors.InvalidInput("unknown discipline: " + string(d))
	}
	if u.IsEmpty() {
		return errors.InvalidInput("config update changes nothing")
	}
	return s.manager.UpdateConfig(d, u)
}

// Preload warms every backend
func (s *ValidationService) Preload() error {
	return s.manager.Preload()
}

// Recent returns recorded results for a discipline
func (s *ValidationService) Recent(ctx context.Context, d crafting.Discipline, limit int) ([]*models.ValidationRecord, error) {
	if s.ledger == nil {
		return nil, errors.NotFound("result ledger")
	}
	return s.ledger.Recent(ctx, d, limit)
}

// Summary aggregates recorded results per discipline
func (s *ValidationService) Summary(ctx context.Context) ([]*models.DisciplineSummary, error) {
	if s.ledger == nil {
		return nil, errors.NotFound("result ledger")
	}
	return s.ledger.Summary(ctx)
}

// Encode runs only the preprocessing step for a request, for inspection tools
func (s *ValidationService) Encode(req LayoutRequest) ([]float32, preprocess.Shape, error) {
	if err := req.Check(); err != nil {
		return nil, preprocess.Shape{}, err
	}
	shape, err := preprocess.ShapeOf(req.Discipline)
	if err != nil {
		return nil, shape, err
	}
	enc := s.manager.Encoders()
	switch req.Discipline {
	case crafting.DisciplineSmithing:
		return enc.Grid.Encode(*req.Smithing), shape, nil
	case crafting.DisciplineAdornment:
		return enc.Graph.Encode(*req.Adornment), shape, nil
	case crafting.DisciplineAlchemy:
		return enc.Alchemy.Extract(*req.Alchemy), shape, nil
	case crafting.DisciplineRefining:
		return enc.Refining.Extract(*req.Refining), shape, nil
	default:
		return enc.Engineering.Extract(*req.Engineering), shape, nil
	}
}
