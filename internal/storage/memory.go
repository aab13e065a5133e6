package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pauljones0/deal-finder/internal/models"
)

// Memory is an in-process store with the same contract as the Firestore
// client. It backs tests and STORE=memory local runs.
type Memory struct {
	mu         sync.Mutex
	deals      map[string]models.Deal
	categories map[string]models.Category // keyed by categoryKey
	settings   map[string]string
	seeded     map[string]bool
	now        func() time.Time
}

// NewMemory returns an empty store. now stamps CreatedAt; nil means time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		deals:      make(map[string]models.Deal),
		categories: make(map[string]models.Category),
		settings:   make(map[string]string),
		seeded:     make(map[string]bool),
		now:        now,
	}
}

func (m *Memory) ListDeals(ctx context.Context, since time.Time) ([]models.Deal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Deal, 0, len(m.deals))
	for _, d := range m.deals {
		if !since.IsZero() && d.CreatedAt.Before(since) {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) CreateDeal(ctx context.Context, deal models.Deal) (models.Deal, error) {
	if err := ctx.Err(); err != nil {
		return models.Deal{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(deal), nil
}

func (m *Memory) insertLocked(deal models.Deal) models.Deal {
	deal.ID = uuid.NewString()
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = m.now()
	}
	m.deals[deal.ID] = deal
	return deal
}

func (m *Memory) DeleteDeal(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deals[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.deals, id)
	return nil
}

func (m *Memory) PurgeDeals(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for id, d := range m.deals {
		if d.CreatedAt.Before(cutoff) {
			delete(m.deals, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *Memory) SeedDeals(ctx context.Context, deals []models.Deal) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seeded[seedDealsMarker] || len(m.deals) > 0 {
		return false, nil
	}
	for _, d := range deals {
		m.insertLocked(d)
	}
	m.seeded[seedDealsMarker] = true
	return true, nil
}

func (m *Memory) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *Memory) CreateCategory(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := categoryKey(name)
	if _, ok := m.categories[key]; ok {
		return models.ErrConflict
	}
	m.categories[key] = models.Category{Name: name}
	return nil
}

func (m *Memory) SeedCategories(ctx context.Context, names []string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seeded[seedCategoriesMarker] || len(m.categories) > 0 {
		return false, nil
	}
	for _, n := range names {
		m.categories[categoryKey(n)] = models.Category{Name: n}
	}
	m.seeded[seedCategoriesMarker] = true
	return true, nil
}

func (m *Memory) GetFooterSettings(ctx context.Context) (models.FooterSettings, error) {
	if err := ctx.Err(); err != nil {
		return models.FooterSettings{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.FooterSettingsPatch{
		PrivacyPolicyURL:       lookup(m.settings, "privacyPolicyUrl"),
		TermsOfServiceURL:      lookup(m.settings, "termsOfServiceUrl"),
		AffiliateDisclaimerURL: lookup(m.settings, "affiliateDisclaimerUrl"),
		TwitterURL:             lookup(m.settings, "twitterUrl"),
		GithubURL:              lookup(m.settings, "githubUrl"),
		LinkedinURL:            lookup(m.settings, "linkedinUrl"),
		YoutubeURL:             lookup(m.settings, "youtubeUrl"),
	}.Apply(models.FooterSettings{}), nil
}

func lookup(m map[string]string, key string) *string {
	if v, ok := m[key]; ok {
		return &v
	}
	return nil
}

func (m *Memory) UpdateFooterSettings(ctx context.Context, fields map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range fields {
		m.settings[k] = v
	}
	return nil
}

// categoryKey is the case-insensitive identity of a category name.
func categoryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
