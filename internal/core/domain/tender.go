package domain

import "time"

// Tender is a procurement opportunity tracked on the board.
type Tender struct {
	ID                 string    `json:"id" bson:"_id"`
	TenderNumber       string    `json:"tenderNumber" bson:"tender_number"`
	ClientName         string    `json:"clientName" bson:"client_name"`
	Description        string    `json:"description" bson:"description"`
	BriefingDate       time.Time `json:"briefingDate" bson:"briefing_date"`
	SubmissionDate     time.Time `json:"submissionDate" bson:"submission_date"`
	Venue              string    `json:"venue" bson:"venue"`
	CompulsoryBriefing bool      `json:"compulsoryBriefing" bson:"compulsory_briefing"`
}

// TenderPatch carries the fields of a partial tender update.
type TenderPatch struct {
	TenderNumber       *string
	ClientName         *string
	Description        *string
	BriefingDate       *time.Time
	SubmissionDate     *time.Time
	Venue              *string
	CompulsoryBriefing *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TenderPatch) IsEmpty() bool {
	return p.TenderNumber == nil &&
		p.ClientName == nil &&
		p.Description == nil &&
		p.BriefingDate == nil &&
		p.SubmissionDate == nil &&
		p.Venue == nil &&
		p.CompulsoryBriefing == nil
}

// Apply merges the patch into t.
func (p TenderPatch) Apply(t *Tender) {
	if p.TenderNumber != nil {
		t.TenderNumber = *p.TenderNumber
	}
	if p.ClientName != nil {
		t.ClientName = *p.ClientName
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.BriefingDate != nil {
		t.BriefingDate = p.BriefingDate.UTC()
	}
	if p.SubmissionDate != nil {
		t.SubmissionDate = p.SubmissionDate.UTC()
	}
	if p.Venue != nil {
		t.Venue = *p.Venue
	}
	if p.CompulsoryBriefing != nil {
		t.CompulsoryBriefing = *p.CompulsoryBriefing
	}
}
