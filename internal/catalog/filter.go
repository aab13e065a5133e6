package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pauljones0/deal-finder/internal/models"
)

// TimeScope partitions deals by creation date relative to the start of today.
type TimeScope string

const (
	ScopeAll     TimeScope = "all"
	ScopeToday   TimeScope = "today"
	ScopeHistory TimeScope = "history"
)

// QuickFilter is a named secondary predicate applied after category and time filtering.
type QuickFilter string

const (
	QuickNone     QuickFilter = ""
	QuickHot      QuickFilter = "hot"
	QuickSoon     QuickFilter = "soon"
	QuickUnder499 QuickFilter = "under499"
	QuickTech     QuickFilter = "tech"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// Filter is a listing request. The zero value lists every deal in the retention window.
type Filter struct {
	Query    string
	Category string
	Scope    TimeScope
	Quick    QuickFilter
}

// ParseTimeScope maps request text to a TimeScope; empty means ScopeAll.
func ParseTimeScope(s string) (TimeScope, error) {
	switch TimeScope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeToday:
		return ScopeToday, nil
	case ScopeHistory:
		return ScopeHistory, nil
	}
	return "", models.NewValidationError("scope", fmt.Sprintf("unknown time scope %q", s))
}

// ParseQuickFilter maps request text to a QuickFilter; empty means none.
func ParseQuickFilter(s string) (QuickFilter, error) {
	q := QuickFilter(strings.ToLower(strings.TrimSpace(s)))
	switch q {
	case QuickNone, QuickHot, QuickSoon, QuickUnder499, QuickTech:
		return q, nil
	}
	return "", models.NewValidationError("filter", fmt.Sprintf("unknown quick filter %q", s))
}

// Policy holds the tunables of the listing pipeline.
type Policy struct {
	Retention       time.Duration
	SoonWindow      time.Duration
	CheapPriceLimit float64
	TechCategories  []string
	Location        *time.Location
}

// DefaultPolicy is a 15 day retention window, 48h "soon" window, a 499 price
// limit and Electronics/Mobile as tech, in the process time zone.
func DefaultPolicy() Policy {
	return Policy{
		Retention:       15 * 24 * time.Hour,
		SoonWindow:      48 * time.Hour,
		CheapPriceLimit: 499,
		TechCategories:  []string{"Electronics", "Mobile"},
		Location:        time.Local,
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// RetentionCutoff is the oldest creation time still listed at now.
func (p Policy) RetentionCutoff(now time.Time) time.Time {
	return now.Add(-p.Retention)
}

// StartOfDay returns local midnight of the calendar day containing now.
func (p Policy) StartOfDay(now time.Time) time.Time {
	local := now.In(p.location())
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.location())
}

// Apply runs the listing pipeline over deals, which must already be ordered
// newest first. Stages run in a fixed order: retention, time scope, category,
// quick filter, free text. The input order is preserved.
func (p Policy) Apply(deals []models.Deal, f Filter, now time.Time) []models.Deal {
	cutoff := p.RetentionCutoff(now)
	dayStart := p.StartOfDay(now)
	query := strings.ToLower(strings.TrimSpace(f.Query))
	filterCategory := f.Category != "" && f.Category != AllCategories && f.Quick != QuickTech

	out := make([]models.Deal, 0, len(deals))
	for _, d := range deals {
		if d.CreatedAt.Before(cutoff) {
			continue
		}

		switch f.Scope {
		case ScopeToday:
			if d.CreatedAt.Before(dayStart) {
				continue
			}
		case ScopeHistory:
			if !d.CreatedAt.Before(dayStart) {
				continue
			}
		}

		if filterCategory && d.Category != f.Category {
			continue
		}

		if !p.matchQuick(d, f.Quick, now) {
			continue
		}

		if query != "" &&
			!strings.Contains(strings.ToLower(d.Title), query) &&
			!strings.Contains(strings.ToLower(d.Description), query) {
			continue
		}

		out = append(out, d)
	}
	return out
}

func (p Policy) matchQuick(d models.Deal, q QuickFilter, now time.Time) bool {
	switch q {
	case QuickHot:
		return d.IsHotDeal
	case QuickSoon:
		// strictly in the future, at most SoonWindow out (inclusive)
		return d.ExpireAt.After(now) && !d.ExpireAt.After(now.Add(p.SoonWindow))
	case QuickUnder499:
		return d.Price < p.CheapPriceLimit
	case QuickTech:
		return slices.Contains(p.TechCategories, d.Category)
	}
	return true
}
