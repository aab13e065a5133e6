package catalog

import (
	"context"
	"time"

	"github.com/pauljones0/deal-finder/internal/models"
)

// DealStore abstracts the storage layer for deal data.
type DealStore interface {
	// ListDeals returns deals created at or after since (all when since is
	// zero), newest first.
	ListDeals(ctx context.Context, since time.Time) ([]models.Deal, error)
	// CreateDeal persists deal, assigning its ID and, when zero, its CreatedAt.
	CreateDeal(ctx context.Context, deal models.Deal) (models.Deal, error)
	// DeleteDeal hard-deletes by id; models.ErrNotFound when absent.
	DeleteDeal(ctx context.Context, id string) error
	// PurgeDeals hard-deletes every deal created before cutoff.
	PurgeDeals(ctx context.Context, cutoff time.Time) (int, error)
	// SeedDeals inserts deals once, only into an empty collection.
	SeedDeals(ctx context.Context, deals []models.Deal) (bool, error)
}

// CategoryStore abstracts the category registry.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	// CreateCategory returns models.ErrConflict when the name exists in any case.
	CreateCategory(ctx context.Context, name string) error
	// SeedCategories registers names once, only into an empty registry.
	SeedCategories(ctx context.Context, names []string) (bool, error)
}

// SettingsStore abstracts the footer settings record.
type SettingsStore interface {
	// GetFooterSettings returns the stored values; absent fields are empty.
	GetFooterSettings(ctx context.Context) (models.FooterSettings, error)
	// UpdateFooterSettings upserts only the given fields.
	UpdateFooterSettings(ctx context.Context, fields map[string]string) error
}

// Store is everything the catalog needs from persistence.
type Store interface {
	DealStore
	CategoryStore
	SettingsStore
}

// Categorizer suggests a category label for a deal.
type Categorizer interface {
	Categorize(ctx context.Context, title, description string) (string, error)
}

// Announcer publishes a newly created deal somewhere outside the site.
type Announcer interface {
	Announce(ctx context.Context, deal models.Deal) error
}
