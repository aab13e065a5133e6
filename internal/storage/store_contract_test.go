package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pauljones0/deal-finder/internal/catalog"
	"github.com/pauljones0/deal-finder/internal/models"
)

var (
	_ catalog.Store = (*Memory)(nil)
	_ catalog.Store = (*Client)(nil)
)

func sampleDeal(title string, created time.Time) models.Deal {
	return models.Deal{
		Title:         title,
		Description:   "description of " + title,
		Price:         100,
		OriginalPrice: 150,
		ImageURL:      "https://example.com/img.png",
		Link:          "https://example.com/deal",
		Category:      "Mobile",
		CreatedAt:     created,
		ExpireAt:      created.Add(72 * time.Hour),
	}
}

// runStoreContract exercises the behaviour every catalog.Store must share.
func runStoreContract(t *testing.T, store catalog.Store) {
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	t.Run("deals ordered newest first", func(t *testing.T) {
		older, err := store.CreateDeal(ctx, sampleDeal("older", base.Add(-48*time.Hour)))
		if err != nil {
			t.Fatalf("CreateDeal() error = %v", err)
		}
		newer, err := store.CreateDeal(ctx, sampleDeal("newer", base))
		if err != nil {
			t.Fatalf("CreateDeal() error = %v", err)
		}
		if older.ID == "" || newer.ID == "" || older.ID == newer.ID {
			t.Fatalf("expected distinct non-empty IDs, got %q and %q", older.ID, newer.ID)
		}

		all, err := store.ListDeals(ctx, time.Time{})
		if err != nil {
			t.Fatalf("ListDeals() error = %v", err)
		}
		if len(all) < 2 {
			t.Fatalf("ListDeals() returned %d deals, want >= 2", len(all))
		}
		for i := 1; i < len(all); i++ {
			if all[i].CreatedAt.After(all[i-1].CreatedAt) {
				t.Errorf("deals not ordered newest first at %d: %v after %v", i, all[i].CreatedAt, all[i-1].CreatedAt)
			}
		}

		recent, err := store.ListDeals(ctx, base.Add(-time.Hour))
		if err != nil {
			t.Fatalf("ListDeals(since) error = %v", err)
		}
		for _, d := range recent {
			if d.ID == older.ID {
				t.Errorf("ListDeals(since) returned deal created before since")
			}
		}
	})

	t.Run("zero CreatedAt is stamped", func(t *testing.T) {
		d, err := store.CreateDeal(ctx, sampleDeal("stamped", time.Time{}))
		if err != nil {
			t.Fatalf("CreateDeal() error = %v", err)
		}
		if d.CreatedAt.IsZero() {
			t.Error("CreateDeal() left CreatedAt zero")
		}
	})

	t.Run("delete", func(t *testing.T) {
		d, err := store.CreateDeal(ctx, sampleDeal("doomed", base))
		if err != nil {
			t.Fatalf("CreateDeal() error = %v", err)
		}
		if err := store.DeleteDeal(ctx, d.ID); err != nil {
			t.Fatalf("DeleteDeal() error = %v", err)
		}
		if err := store.DeleteDeal(ctx, d.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("second DeleteDeal() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("categories", func(t *testing.T) {
		seeded, err := store.SeedCategories(ctx, []string{"Mobile", "Books"})
		if err != nil {
			t.Fatalf("SeedCategories() error = %v", err)
		}
		if !seeded {
			t.Error("first SeedCategories() should seed an empty registry")
		}
		again, err := store.SeedCategories(ctx, []string{"Mobile", "Books"})
		if err != nil {
			t.Fatalf("SeedCategories() error = %v", err)
		}
		if again {
			t.Error("second SeedCategories() should be a no-op")
		}

		if err := store.CreateCategory(ctx, "Gaming"); err != nil {
			t.Fatalf("CreateCategory() error = %v", err)
		}
		if err := store.CreateCategory(ctx, "gAmInG"); !errors.Is(err, models.ErrConflict) {
			t.Errorf("CreateCategory(dup) error = %v, want ErrConflict", err)
		}

		cats, err := store.ListCategories(ctx)
		if err != nil {
			t.Fatalf("ListCategories() error = %v", err)
		}
		if len(cats) != 3 {
			t.Errorf("ListCategories() = %v, want 3 entries", cats)
		}
	})

	t.Run("footer settings partial upsert", func(t *testing.T) {
		empty, err := store.GetFooterSettings(ctx)
		if err != nil {
			t.Fatalf("GetFooterSettings() error = %v", err)
		}
		if empty.TwitterURL != "" {
			t.Errorf("expected unset twitter URL, got %q", empty.TwitterURL)
		}
		if err := store.UpdateFooterSettings(ctx, map[string]string{"twitterUrl": "https://twitter.com/x"}); err != nil {
			t.Fatalf("UpdateFooterSettings() error = %v", err)
		}
		if err := store.UpdateFooterSettings(ctx, map[string]string{"githubUrl": "https://github.com/x"}); err != nil {
			t.Fatalf("UpdateFooterSettings() error = %v", err)
		}
		got, err := store.GetFooterSettings(ctx)
		if err != nil {
			t.Fatalf("GetFooterSettings() error = %v", err)
		}
		if got.TwitterURL != "https://twitter.com/x" || got.GithubURL != "https://github.com/x" {
			t.Errorf("partial updates not merged: %+v", got)
		}
	})

	t.Run("purge", func(t *testing.T) {
		stale, err := store.CreateDeal(ctx, sampleDeal("stale", base.Add(-40*24*time.Hour)))
		if err != nil {
			t.Fatalf("CreateDeal() error = %v", err)
		}
		n, err := store.PurgeDeals(ctx, base.Add(-30*24*time.Hour))
		if err != nil {
			t.Fatalf("PurgeDeals() error = %v", err)
		}
		if n < 1 {
			t.Errorf("PurgeDeals() = %d, want >= 1", n)
		}
		all, err := store.ListDeals(ctx, time.Time{})
		if err != nil {
			t.Fatalf("ListDeals() error = %v", err)
		}
		for _, d := range all {
			if d.ID == stale.ID || strings.EqualFold(d.Title, "stale") {
				t.Error("purged deal still listed")
			}
		}
	})
}

func TestMemory_Contract(t *testing.T) {
	runStoreContract(t, NewMemory(nil))
}

func TestMemory_SeedDealsOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	if _, err := m.CreateDeal(ctx, sampleDeal("existing", time.Now())); err != nil {
		t.Fatal(err)
	}
	seeded, err := m.SeedDeals(ctx, []models.Deal{sampleDeal("demo", time.Now())})
	if err != nil {
		t.Fatal(err)
	}
	if seeded {
		t.Error("SeedDeals() should not seed a non-empty collection")
	}

	fresh := NewMemory(nil)
	seeded, err = fresh.SeedDeals(ctx, []models.Deal{sampleDeal("demo", time.Now())})
	if err != nil || !seeded {
		t.Fatalf("SeedDeals() = %v, %v; want true, nil", seeded, err)
	}
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemory(nil).ListDeals(ctx, time.Time{}); !errors.Is(err, context.Canceled) {
		t.Errorf("ListDeals() error = %v, want context.Canceled", err)
	}
}

func TestCategoryDocID(t *testing.T) {
	tests := map[string]string{
		"Mobile":       "mobile",
		" TV ":         "tv",
		"Home/Kitchen": "home%2Fkitchen",
		"..":           "%2E%2E",
		"__reserved__": "%5F%5Freserved%5F%5F",
		"Toys & Games": "toys%20&%20games",
	}
	for in, want := range tests {
		if got := categoryDocID(in); got != want {
			t.Errorf("categoryDocID(%q) = %q, want %q", in, got, want)
		}
	}
}
