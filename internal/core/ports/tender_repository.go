package ports

import (
	"context"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

// TenderRepository defines persistence operations for tenders.
type TenderRepository interface {
	// Get returns domain.ErrTenderNotFound when no tender has the id.
	Get(ctx context.Context, id string) (*domain.Tender, error)
	// List returns every tender ordered by submission date, earliest first.
	List(ctx context.Context) ([]domain.Tender, error)
	// Create stores the tender under a freshly generated id. A duplicate
	// tender number yields domain.ErrTenderNumberTaken.
	Create(ctx context.Context, tender *domain.Tender) (*domain.Tender, error)
	Update(ctx context.Context, id string, patch domain.TenderPatch) (*domain.Tender, error)
	Delete(ctx context.Context, id string) error
}
