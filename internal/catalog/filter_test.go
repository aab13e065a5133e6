package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/pauljones0/deal-finder/internal/models"
)

var testNow = time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

func testPolicy() Policy {
	p := DefaultPolicy()
	p.Location = time.UTC
	return p
}

func deal(id string, created time.Time, mods ...func(*models.Deal)) models.Deal {
	d := models.Deal{
		ID:          id,
		Title:       "Deal " + id,
		Description: "Description for " + id,
		Price:       999,
		Category:    "Fashion",
		CreatedAt:   created,
		ExpireAt:    created.Add(10 * 24 * time.Hour),
	}
	for _, m := range mods {
		m(&d)
	}
	return d
}

func ids(deals []models.Deal) []string {
	out := make([]string, len(deals))
	for i, d := range deals {
		out[i] = d.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// fixture is ordered newest first, as the store returns it.
func fixture() []models.Deal {
	return []models.Deal{
		deal("today-hot-mobile", testNow.Add(-time.Hour), func(d *models.Deal) {
			d.IsHotDeal = true
			d.Category = "Mobile"
			d.Price = 299
			d.ExpireAt = testNow.Add(24 * time.Hour)
		}),
		deal("today-tv", testNow.Add(-14*time.Hour), func(d *models.Deal) {
			d.Category = "TV"
			d.Title = "Big Screen OLED"
			d.ExpireAt = testNow.Add(48 * time.Hour)
		}),
		deal("yesterday-electronics", testNow.Add(-20*time.Hour), func(d *models.Deal) {
			d.Category = "Electronics"
			d.Description = "Noise cancelling HEADPHONES"
			d.ExpireAt = testNow.Add(49 * time.Hour)
		}),
		deal("week-old-expired", testNow.Add(-7*24*time.Hour), func(d *models.Deal) {
			d.Price = 498.99
			d.ExpireAt = testNow.Add(-time.Minute)
		}),
		deal("edge-of-window", testNow.Add(-15*24*time.Hour), func(d *models.Deal) {
			d.IsHotDeal = true
		}),
		deal("too-old", testNow.Add(-15*24*time.Hour-time.Second), func(d *models.Deal) {
			d.IsHotDeal = true
			d.Category = "Mobile"
			d.Price = 1
		}),
	}
}

func TestApply(t *testing.T) {
	p := testPolicy()
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "zero filter applies retention only",
			filter: Filter{},
			want:   []string{"today-hot-mobile", "today-tv", "yesterday-electronics", "week-old-expired", "edge-of-window"},
		},
		{
			name:   "today",
			filter: Filter{Scope: ScopeToday},
			want:   []string{"today-hot-mobile", "today-tv"},
		},
		{
			name:   "history",
			filter: Filter{Scope: ScopeHistory},
			want:   []string{"yesterday-electronics", "week-old-expired", "edge-of-window"},
		},
		{
			name:   "category exact",
			filter: Filter{Category: "TV"},
			want:   []string{"today-tv"},
		},
		{
			name:   "category is case sensitive",
			filter: Filter{Category: "tv"},
			want:   []string{},
		},
		{
			name:   "category all",
			filter: Filter{Category: AllCategories, Scope: ScopeToday},
			want:   []string{"today-hot-mobile", "today-tv"},
		},
		{
			name:   "hot",
			filter: Filter{Quick: QuickHot},
			want:   []string{"today-hot-mobile", "edge-of-window"},
		},
		{
			name:   "soon includes the 48h boundary",
			filter: Filter{Quick: QuickSoon},
			want:   []string{"today-hot-mobile", "today-tv"},
		},
		{
			name:   "under499",
			filter: Filter{Quick: QuickUnder499},
			want:   []string{"today-hot-mobile", "week-old-expired"},
		},
		{
			name:   "tech ignores category",
			filter: Filter{Quick: QuickTech, Category: "Fashion"},
			want:   []string{"today-hot-mobile", "yesterday-electronics"},
		},
		{
			name:   "query matches title case insensitively",
			filter: Filter{Query: "oled"},
			want:   []string{"today-tv"},
		},
		{
			name:   "query matches description",
			filter: Filter{Query: "  headphones "},
			want:   []string{"yesterday-electronics"},
		},
		{
			name:   "stages combine",
			filter: Filter{Scope: ScopeHistory, Quick: QuickHot},
			want:   []string{"edge-of-window"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(p.Apply(fixture(), tt.filter, testNow))
			if !equalIDs(got, tt.want) {
				t.Errorf("Apply(%+v) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestApply_RetentionHoldsForEveryFilter(t *testing.T) {
	p := testPolicy()
	cutoff := p.RetentionCutoff(testNow)
	scopes := []TimeScope{ScopeAll, ScopeToday, ScopeHistory}
	quicks := []QuickFilter{QuickNone, QuickHot, QuickSoon, QuickUnder499, QuickTech}
	for _, s := range scopes {
		for _, q := range quicks {
			for _, d := range p.Apply(fixture(), Filter{Scope: s, Quick: q, Category: "Mobile"}, testNow) {
				if d.CreatedAt.Before(cutoff) {
					t.Errorf("scope=%s quick=%s returned %s outside retention", s, q, d.ID)
				}
			}
		}
	}
}

func TestApply_TodayAndHistoryPartitionAll(t *testing.T) {
	p := testPolicy()
	all := p.Apply(fixture(), Filter{Scope: ScopeAll}, testNow)
	today := p.Apply(fixture(), Filter{Scope: ScopeToday}, testNow)
	history := p.Apply(fixture(), Filter{Scope: ScopeHistory}, testNow)

	seen := make(map[string]bool)
	for _, d := range today {
		seen[d.ID] = true
	}
	for _, d := range history {
		if seen[d.ID] {
			t.Errorf("%s is in both today and history", d.ID)
		}
		seen[d.ID] = true
	}
	if len(seen) != len(all) {
		t.Errorf("today ∪ history has %d deals, all has %d", len(seen), len(all))
	}
}

func TestStartOfDay_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	p := testPolicy()
	p.Location = loc
	// 03:00 UTC on the 18th is still the 17th at UTC-8.
	got := p.StartOfDay(time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC))
	want := time.Date(2026, 10, 17, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("StartOfDay() = %v, want %v", got, want)
	}
}

func TestParseTimeScope(t *testing.T) {
	for in, want := range map[string]TimeScope{"": ScopeAll, "ALL": ScopeAll, "today": ScopeToday, " history ": ScopeHistory} {
		got, err := ParseTimeScope(in)
		if err != nil || got != want {
			t.Errorf("ParseTimeScope(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	_, err := ParseTimeScope("yesterday")
	var ve *models.ValidationError
	if !errors.As(err, &ve) || ve.Fields["scope"] == "" {
		t.Errorf("ParseTimeScope(invalid) error = %v, want scope ValidationError", err)
	}
}

func TestParseQuickFilter(t *testing.T) {
	for _, in := range []string{"", "hot", "SOON", "under499", "tech"} {
		if _, err := ParseQuickFilter(in); err != nil {
			t.Errorf("ParseQuickFilter(%q) error = %v", in, err)
		}
	}
	_, err := ParseQuickFilter("cheap")
	var ve *models.ValidationError
	if !errors.As(err, &ve) || ve.Fields["filter"] == "" {
		t.Errorf("ParseQuickFilter(invalid) error = %v, want filter ValidationError", err)
	}
}
