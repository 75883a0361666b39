// Package memory holds map-backed stores used by tests and by the
// STORAGE_DRIVER=memory / SESSION_DRIVER=memory modes.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

type TenderRepository struct {
	mu      sync.RWMutex
	tenders map[string]domain.Tender
}

func NewTenderRepository() *TenderRepository {
	return &TenderRepository{tenders: make(map[string]domain.Tender)}
}

func (r *TenderRepository) Get(_ context.Context, id string) (*domain.Tender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tenders[id]
	if !ok {
		return nil, domain.ErrTenderNotFound
	}
	return &t, nil
}

func (r *TenderRepository) List(_ context.Context) ([]domain.Tender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Tender, 0, len(r.tenders))
	for _, t := range r.tenders {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SubmissionDate.Equal(out[j].SubmissionDate) {
			return out[i].TenderNumber < out[j].TenderNumber
		}
		return out[i].SubmissionDate.Before(out[j].SubmissionDate)
	})
	return out, nil
}

func (r *TenderRepository) Create(_ context.Context, tender *domain.Tender) (*domain.Tender, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.numberTaken(tender.TenderNumber, "") {
		return nil, domain.ErrTenderNumberTaken
	}

	stored := *tender
	stored.ID = uuid.NewString()
	r.tenders[stored.ID] = stored
	return &stored, nil
}

func (r *TenderRepository) Update(_ context.Context, id string, patch domain.TenderPatch) (*domain.Tender, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tenders[id]
	if !ok {
		return nil, domain.ErrTenderNotFound
	}
	if patch.TenderNumber != nil && r.numberTaken(*patch.TenderNumber, id) {
		return nil, domain.ErrTenderNumberTaken
	}

	patch.Apply(&t)
	r.tenders[id] = t
	return &t, nil
}

func (r *TenderRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tenders, id)
	return nil
}

// Ping always succeeds.
func (r *TenderRepository) Ping(context.Context) error { return nil }

// numberTaken must be called with mu held.
func (r *TenderRepository) numberTaken(number, selfID string) bool {
	for id, t := range r.tenders {
		if t.TenderNumber == number && id != selfID {
			return true
		}
	}
	return false
}
