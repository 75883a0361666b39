package tenderclient

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

type Tender struct {
	ID                 string    `json:"id"`
	TenderNumber       string    `json:"tenderNumber"`
	ClientName         string    `json:"clientName"`
	Description        string    `json:"description"`
	BriefingDate       time.Time `json:"briefingDate"`
	SubmissionDate     time.Time `json:"submissionDate"`
	Venue              string    `json:"venue"`
	CompulsoryBriefing bool      `json:"compulsoryBriefing"`
}

// TenderInput is the payload of CreateTender.
type TenderInput struct {
	TenderNumber       string    `json:"tenderNumber"`
	ClientName         string    `json:"clientName"`
	Description        string    `json:"description"`
	BriefingDate       time.Time `json:"briefingDate"`
	SubmissionDate     time.Time `json:"submissionDate"`
	Venue              string    `json:"venue"`
	CompulsoryBriefing bool      `json:"compulsoryBriefing"`
}

// TenderPatch is a partial tender update; nil fields are not sent.
type TenderPatch struct {
	TenderNumber       *string    `json:"tenderNumber,omitempty"`
	ClientName         *string    `json:"clientName,omitempty"`
	Description        *string    `json:"description,omitempty"`
	BriefingDate       *time.Time `json:"briefingDate,omitempty"`
	SubmissionDate     *time.Time `json:"submissionDate,omitempty"`
	Venue              *string    `json:"venue,omitempty"`
	CompulsoryBriefing *bool      `json:"compulsoryBriefing,omitempty"`
}

type CalendarDay struct {
	Date    string   `json:"date"`
	Status  string   `json:"status"`
	Tenders []Tender `json:"tenders"`
}

type UserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

// UserPatch is a partial account update. A nil Password keeps the current one.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	IsAdmin  *bool   `json:"isAdmin,omitempty"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// --- Auth ---

func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var u User
	if err := c.mutate(ctx, http.MethodPost, "/auth/login", "", credentials{username, password}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.mutate(ctx, http.MethodPost, "/auth/logout", "", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.get(ctx, "/auth/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// --- Tenders ---

func (c *Client) ListTenders(ctx context.Context) ([]Tender, error) {
	var out []Tender
	if err := c.get(ctx, tendersPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTender(ctx context.Context, id string) (*Tender, error) {
	var t Tender
	if err := c.get(ctx, tendersPath+"/"+url.PathEscape(id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) CreateTender(ctx context.Context, in TenderInput) (*Tender, error) {
	if !in.SubmissionDate.After(in.BriefingDate) {
		return nil, ErrSubmissionBeforeBriefing
	}
	var t Tender
	if err := c.mutate(ctx, http.MethodPost, tendersPath, tendersPath, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTender checks date ordering only when the patch carries both dates.
func (c *Client) UpdateTender(ctx context.Context, id string, patch TenderPatch) (*Tender, error) {
	if patch.BriefingDate != nil && patch.SubmissionDate != nil && !patch.SubmissionDate.After(*patch.BriefingDate) {
		return nil, ErrSubmissionBeforeBriefing
	}
	var t Tender
	if err := c.mutate(ctx, http.MethodPut, tendersPath+"/"+url.PathEscape(id), tendersPath, patch, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTender(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, tendersPath+"/"+url.PathEscape(id), tendersPath, nil, nil)
}

// Calendar fetches the days of month (YYYY-MM) that carry tenders. An empty
// month asks for the server's current month.
func (c *Client) Calendar(ctx context.Context, month string) ([]CalendarDay, error) {
	path := tendersPath + "/calendar"
	if month != "" {
		path += "?month=" + url.QueryEscape(month)
	}
	var out []CalendarDay
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportTenders downloads the spreadsheet export. Exports are never cached.
func (c *Client) ExportTenders(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, tendersPath+"/export", nil)
}

// --- Admin ---

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.get(ctx, usersPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.get(ctx, usersPath+"/"+url.PathEscape(id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) (*User, error) {
	var u User
	if err := c.mutate(ctx, http.MethodPost, usersPath, usersPath, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error) {
	var u User
	if err := c.mutate(ctx, http.MethodPut, usersPath+"/"+url.PathEscape(id), usersPath, patch, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, usersPath+"/"+url.PathEscape(id), usersPath, nil, nil)
}
