package handler

import (
	"time"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type deleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// --- Users ---

// Pointer fields tell a missing key apart from an empty value.
type createUserRequest struct {
	Username *string `json:"username" validate:"required,min=1"`
	Password *string `json:"password" validate:"required"`
	IsAdmin  *bool   `json:"isAdmin"`
}

func (r createUserRequest) toInput() ports.CreateUserInput {
	in := ports.CreateUserInput{Username: *r.Username, Password: *r.Password}
	if r.IsAdmin != nil {
		in.IsAdmin = *r.IsAdmin
	}
	return in
}

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitnil,min=1"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"isAdmin"`
}

func (r updateUserRequest) toInput() ports.UpdateUserInput {
	return ports.UpdateUserInput{Username: r.Username, Password: r.Password, IsAdmin: r.IsAdmin}
}

// --- Tenders ---

// Dates travel as RFC 3339 strings so a malformed value is reported against
// its own field.
type createTenderRequest struct {
	TenderNumber       *string `json:"tenderNumber"       validate:"required,min=1"`
	ClientName         *string `json:"clientName"         validate:"required,min=1"`
	Description        *string `json:"description"        validate:"required"`
	BriefingDate       *string `json:"briefingDate"       validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	SubmissionDate     *string `json:"submissionDate"     validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Venue              *string `json:"venue"              validate:"required"`
	CompulsoryBriefing *bool   `json:"compulsoryBriefing"`
}

func (r createTenderRequest) toInput() ports.CreateTenderInput {
	in := ports.CreateTenderInput{
		TenderNumber:   *r.TenderNumber,
		ClientName:     *r.ClientName,
		Description:    *r.Description,
		BriefingDate:   mustParseTime(*r.BriefingDate),
		SubmissionDate: mustParseTime(*r.SubmissionDate),
		Venue:          *r.Venue,
	}
	if r.CompulsoryBriefing != nil {
		in.CompulsoryBriefing = *r.CompulsoryBriefing
	}
	return in
}

type updateTenderRequest struct {
	TenderNumber       *string `json:"tenderNumber"       validate:"omitnil,min=1"`
	ClientName         *string `json:"clientName"         validate:"omitnil,min=1"`
	Description        *string `json:"description"`
	BriefingDate       *string `json:"briefingDate"       validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	SubmissionDate     *string `json:"submissionDate"     validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	Venue              *string `json:"venue"`
	CompulsoryBriefing *bool   `json:"compulsoryBriefing"`
}

func (r updateTenderRequest) toPatch() domain.TenderPatch {
	p := domain.TenderPatch{
		TenderNumber:       r.TenderNumber,
		ClientName:         r.ClientName,
		Description:        r.Description,
		Venue:              r.Venue,
		CompulsoryBriefing: r.CompulsoryBriefing,
	}
	if r.BriefingDate != nil {
		t := mustParseTime(*r.BriefingDate)
		p.BriefingDate = &t
	}
	if r.SubmissionDate != nil {
		t := mustParseTime(*r.SubmissionDate)
		p.SubmissionDate = &t
	}
	return p
}

// mustParseTime is only called on values the datetime rule accepted.
func mustParseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}
