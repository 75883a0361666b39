package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

const tenderColumns = `id, tender_number, client_name, description, briefing_date, submission_date, venue, compulsory_briefing`

type TenderRepository struct {
	db DBTX
}

func NewTenderRepository(db DBTX) *TenderRepository {
	return &TenderRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTender(row rowScanner) (*domain.Tender, error) {
	var t domain.Tender
	if err := row.Scan(&t.ID, &t.TenderNumber, &t.ClientName, &t.Description,
		&t.BriefingDate, &t.SubmissionDate, &t.Venue, &t.CompulsoryBriefing); err != nil {
		return nil, err
	}
	t.BriefingDate = t.BriefingDate.UTC()
	t.SubmissionDate = t.SubmissionDate.UTC()
	return &t, nil
}

func (r *TenderRepository) Get(ctx context.Context, id string) (*domain.Tender, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT ` + tenderColumns + ` FROM tenders WHERE id = $1`

	t, err := scanTender(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTenderNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *TenderRepository) List(ctx context.Context) ([]domain.Tender, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT ` + tenderColumns + ` FROM tenders ORDER BY submission_date ASC, tender_number ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Tender, 0)
	for rows.Next() {
		t, err := scanTender(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *TenderRepository) Create(ctx context.Context, tender *domain.Tender) (*domain.Tender, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query :=
		`INSERT INTO tenders (tender_number, client_name, description, briefing_date, submission_date, venue, compulsory_briefing)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING ` + tenderColumns

	t, err := scanTender(r.db.QueryRowContext(ctx, query,
		tender.TenderNumber, tender.ClientName, tender.Description,
		tender.BriefingDate.UTC(), tender.SubmissionDate.UTC(),
		tender.Venue, tender.CompulsoryBriefing))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrTenderNumberTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Update writes only the columns present in patch. An empty patch reads the
// current row.
func (r *TenderRepository) Update(ctx context.Context, id string, patch domain.TenderPatch) (*domain.Tender, error) {
	if patch.IsEmpty() {
		return r.Get(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var set setClause
	if patch.TenderNumber != nil {
		set.add("tender_number", *patch.TenderNumber)
	}
	if patch.ClientName != nil {
		set.add("client_name", *patch.ClientName)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.BriefingDate != nil {
		set.add("briefing_date", patch.BriefingDate.UTC())
	}
	if patch.SubmissionDate != nil {
		set.add("submission_date", patch.SubmissionDate.UTC())
	}
	if patch.Venue != nil {
		set.add("venue", *patch.Venue)
	}
	if patch.CompulsoryBriefing != nil {
		set.add("compulsory_briefing", *patch.CompulsoryBriefing)
	}

	args := append(set.args, id)
	query := fmt.Sprintf(`UPDATE tenders SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set.cols, ", "), len(args), tenderColumns)

	t, err := scanTender(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, domain.ErrTenderNotFound
		case isUniqueViolation(err):
			return nil, domain.ErrTenderNumberTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *TenderRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM tenders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
