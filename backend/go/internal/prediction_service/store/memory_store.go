package store

import (
	"context"
	"slices"
	"sync"

	"prediction_relay/backend/go/pkg/models"
)

// MemoryPredictionStore keeps records in process memory.
type MemoryPredictionStore struct {
	mu      sync.RWMutex
	records []models.PredictionRecord
}

func NewMemoryPredictionStore() *MemoryPredictionStore {
	return &MemoryPredictionStore{}
}

func (s *MemoryPredictionStore) Save(ctx context.Context, record *models.PredictionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r := *record
	r.Features = slices.Clone(record.Features)

	s.mu.Lock()
	s.records = append(s.records, r)
	s.mu.Unlock()
	return nil
}

// List returns records newest first; records with equal timestamps come back in reverse
// insertion order.
func (s *MemoryPredictionStore) List(ctx context.Context) ([]models.PredictionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]models.PredictionRecord, len(s.records))
	for i, r := range s.records {
		out[len(s.records)-1-i] = r
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.PredictionRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
