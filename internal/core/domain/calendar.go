package domain

import (
	"sort"
	"time"
)

// DayStatus is the urgency tag of a calendar day. It depends only on the
// number of calendar days between today and the day, never on time of day.
type DayStatus string

const (
	DayOverdue  DayStatus = "overdue"  // a submission date already passed
	DayUrgent   DayStatus = "urgent"   // submission due today or tomorrow
	DayWarning  DayStatus = "warning"  // submission due in 2-3 days
	DayUpcoming DayStatus = "upcoming" // submission due within a week
	DayBriefing DayStatus = "briefing" // tenders on this day, none due within a week
	DayNone     DayStatus = "none"     // no tenders on this day
)

const dateLayout = "2006-01-02"

// CalendarDay groups the tenders whose briefing or submission falls on Date.
type CalendarDay struct {
	Date    string    `json:"date"`
	Status  DayStatus `json:"status"`
	Tenders []Tender  `json:"tenders"`
}

// DaysBetween returns the whole calendar days from a to b as seen in loc.
// Negative when b is before a.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	// Midnight UTC on both sides sidesteps DST gaps in loc.
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// StatusFor classifies a day given whether submissions and briefings fall on
// it. now is the reference "today". Any day carrying a tender is at least
// DayBriefing.
func StatusFor(day, now time.Time, hasSubmission, hasBriefing bool, loc *time.Location) DayStatus {
	if !hasSubmission && !hasBriefing {
		return DayNone
	}
	if hasSubmission {
		diff := DaysBetween(now, day, loc)
		switch {
		case diff < 0:
			return DayOverdue
		case diff <= 1:
			return DayUrgent
		case diff <= 3:
			return DayWarning
		case diff <= 7:
			return DayUpcoming
		}
	}
	return DayBriefing
}

type dayBucket struct {
	day           time.Time
	hasSubmission bool
	hasBriefing   bool
	tenders       []Tender
	seen          map[string]struct{}
}

// BuildCalendar buckets tenders into the days of the given month. Only days
// carrying at least one tender are returned, in ascending date order.
func BuildCalendar(tenders []Tender, year int, month time.Month, now time.Time, loc *time.Location) []CalendarDay {
	if loc == nil {
		loc = time.UTC
	}

	buckets := make(map[string]*dayBucket)
	add := func(t Tender, at time.Time, submission bool) {
		local := at.In(loc)
		if local.Year() != year || local.Month() != month {
			return
		}
		key := local.Format(dateLayout)
		b, ok := buckets[key]
		if !ok {
			y, m, d := local.Date()
			b = &dayBucket{day: time.Date(y, m, d, 0, 0, 0, 0, loc), seen: make(map[string]struct{})}
			buckets[key] = b
		}
		if submission {
			b.hasSubmission = true
		} else {
			b.hasBriefing = true
		}
		if _, dup := b.seen[t.ID]; !dup {
			b.seen[t.ID] = struct{}{}
			b.tenders = append(b.tenders, t)
		}
	}

	for _, t := range tenders {
		add(t, t.BriefingDate, false)
		add(t, t.SubmissionDate, true)
	}

	days := make([]CalendarDay, 0, len(buckets))
	for key, b := range buckets {
		days = append(days, CalendarDay{
			Date:    key,
			Status:  StatusFor(b.day, now, b.hasSubmission, b.hasBriefing, loc),
			Tenders: b.tenders,
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}
