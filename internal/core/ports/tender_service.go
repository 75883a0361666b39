package ports

import (
	"context"
	"io"
	"time"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

// CreateTenderInput carries a validated tender creation payload.
type CreateTenderInput struct {
	TenderNumber       string
	ClientName         string
	Description        string
	BriefingDate       time.Time
	SubmissionDate     time.Time
	Venue              string
	CompulsoryBriefing bool
}

// TenderService defines the tender use cases available to signed-in users.
type TenderService interface {
	List(ctx context.Context) ([]domain.Tender, error)
	Get(ctx context.Context, id string) (*domain.Tender, error)
	Create(ctx context.Context, input CreateTenderInput) (*domain.Tender, error)
	Update(ctx context.Context, id string, patch domain.TenderPatch) (*domain.Tender, error)
	Delete(ctx context.Context, id string) error
	// Calendar buckets the tenders of one month by day.
	Calendar(ctx context.Context, year int, month time.Month) ([]domain.CalendarDay, error)
}

// TenderExporter renders tenders into a downloadable document.
type TenderExporter interface {
	ContentType() string
	FileExtension() string
	Write(w io.Writer, tenders []domain.Tender) error
}
