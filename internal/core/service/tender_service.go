package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
)

type TenderService struct {
	repo   ports.TenderRepository
	loc    *time.Location
	now    func() time.Time
	logger zerolog.Logger
}

// NewTenderService returns a TenderService whose calendar uses loc for day
// boundaries. A nil loc means UTC.
func NewTenderService(repo ports.TenderRepository, loc *time.Location, logger zerolog.Logger) *TenderService {
	if loc == nil {
		loc = time.UTC
	}
	return &TenderService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

func (s *TenderService) List(ctx context.Context) ([]domain.Tender, error) {
	return s.repo.List(ctx)
}

func (s *TenderService) Get(ctx context.Context, id string) (*domain.Tender, error) {
	return s.repo.Get(ctx, id)
}

func (s *TenderService) Create(ctx context.Context, input ports.CreateTenderInput) (*domain.Tender, error) {
	created, err := s.repo.Create(ctx, &domain.Tender{
		TenderNumber:       input.TenderNumber,
		ClientName:         input.ClientName,
		Description:        input.Description,
		BriefingDate:       input.BriefingDate.UTC(),
		SubmissionDate:     input.SubmissionDate.UTC(),
		Venue:              input.Venue,
		CompulsoryBriefing: input.CompulsoryBriefing,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("tender_number", input.TenderNumber).Msg("failed to create tender")
		return nil, err
	}

	s.logger.Info().Str("tender_id", created.ID).Str("tender_number", created.TenderNumber).Msg("tender created")
	return created, nil
}

func (s *TenderService) Update(ctx context.Context, id string, patch domain.TenderPatch) (*domain.Tender, error) {
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("tender_id", id).Msg("tender updated")
	return updated, nil
}

func (s *TenderService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("tender_id", id).Msg("tender deleted")
	return nil
}

func (s *TenderService) Calendar(ctx context.Context, year int, month time.Month) ([]domain.CalendarDay, error) {
	tenders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.BuildCalendar(tenders, year, month, s.now(), s.loc), nil
}
