package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pauljones0/deal-finder/internal/config"
	"github.com/pauljones0/deal-finder/internal/models"
	"github.com/pauljones0/deal-finder/internal/util"
	"github.com/pauljones0/deal-finder/internal/validator"
)

const announceTimeout = 30 * time.Second

// Options configures a Service. Zero values fall back to sensible defaults.
type Options struct {
	Policy            Policy
	CategoryPolicy    string
	AffiliateTag      string
	DefaultCategories []string
	DefaultFooter     models.FooterSettings
	DemoDeals         []models.Deal
	Categorizer       Categorizer
	Announcer         Announcer
	Now               func() time.Time
}

// Service implements deal listing, the category registry, deal mutation and
// footer settings on top of a Store. It keeps no state between calls.
type Service struct {
	store     Store
	opts      Options
	validator *validator.Validator
	now       func() time.Time
}

func New(store Store, opts Options) *Service {
	if opts.Policy.Retention == 0 {
		opts.Policy = DefaultPolicy()
	}
	if opts.CategoryPolicy == "" {
		opts.CategoryPolicy = config.CategoryPolicyFree
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:     store,
		opts:      opts,
		validator: validator.New(),
		now:       now,
	}
}

// Policy returns the listing policy in effect.
func (s *Service) Policy() Policy { return s.opts.Policy }

// FetchDeals loads and filters deals, surfacing storage failures.
func (s *Service) FetchDeals(ctx context.Context, f Filter) ([]models.Deal, error) {
	now := s.now()
	deals, err := s.store.ListDeals(ctx, s.opts.Policy.RetentionCutoff(now))
	if err != nil {
		return nil, upstream("list deals", err)
	}
	return s.opts.Policy.Apply(deals, f, now), nil
}

// ListDeals is FetchDeals that fails open: on error it logs and returns no deals.
func (s *Service) ListDeals(ctx context.Context, f Filter) []models.Deal {
	deals, err := s.FetchDeals(ctx, f)
	if err != nil {
		slog.Error("Failed to fetch deals, returning empty listing", "error", err)
		return []models.Deal{}
	}
	return deals
}

// GroupByDate buckets deals by local creation date, newest day first.
func (s *Service) GroupByDate(deals []models.Deal) []models.DateGroup {
	return GroupByDate(deals, s.opts.Policy.Location)
}

// AllDeals returns every stored deal newest first, ignoring the retention window.
func (s *Service) AllDeals(ctx context.Context) ([]models.Deal, error) {
	deals, err := s.store.ListDeals(ctx, time.Time{})
	if err != nil {
		return nil, upstream("list all deals", err)
	}
	return deals, nil
}

// AdminData is everything the admin panel renders.
type AdminData struct {
	Deals      []models.Deal `json:"deals"`
	Categories []string      `json:"categories"`
}

// AdminPageData loads all deals and the category list concurrently. Errors surface.
func (s *Service) AdminPageData(ctx context.Context) (AdminData, error) {
	var data AdminData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deals, err := s.AllDeals(gctx)
		data.Deals = deals
		return err
	})
	g.Go(func() error {
		cats, err := s.ListCategories(gctx)
		data.Categories = cats
		return err
	})
	if err := g.Wait(); err != nil {
		return AdminData{}, err
	}
	return data, nil
}

// ListCategories returns registered names sorted ascending without duplicates,
// seeding the defaults first when the registry is empty.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, upstream("list categories", err)
	}
	if len(cats) == 0 && len(s.opts.DefaultCategories) > 0 {
		if _, err := s.store.SeedCategories(ctx, s.opts.DefaultCategories); err != nil {
			return nil, upstream("seed categories", err)
		}
		if cats, err = s.store.ListCategories(ctx); err != nil {
			return nil, upstream("list categories", err)
		}
	}
	return dedupeSorted(cats), nil
}

func dedupeSorted(cats []models.Category) []string {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		if n := strings.TrimSpace(c.Name); n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		key := strings.ToLower(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// AddCategory registers a category and returns its trimmed name.
func (s *Service) AddCategory(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := s.validator.ValidateStruct(models.CategoryInput{Name: name}); err != nil {
		return "", err
	}

	existing, err := s.ListCategories(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := findFold(existing, name); ok {
		return "", fmt.Errorf("category %q: %w", name, models.ErrConflict)
	}

	if err := s.store.CreateCategory(ctx, name); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return "", fmt.Errorf("category %q: %w", name, models.ErrConflict)
		}
		return "", upstream("create category", err)
	}
	slog.Info("Category added", "name", name)
	return name, nil
}

func findFold(names []string, name string) (string, bool) {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// CreateDeal validates input, applies the category policy and persists a new deal.
func (s *Service) CreateDeal(ctx context.Context, in models.DealInput) (models.Deal, error) {
	if err := s.validator.ValidateStruct(in); err != nil {
		return models.Deal{}, err
	}
	expireAt, err := validator.ParseDate(in.ExpireAt, s.opts.Policy.location())
	if err != nil {
		return models.Deal{}, models.NewValidationError("expireAt", "must be a valid date")
	}

	category, err := s.resolveCategory(ctx, strings.TrimSpace(in.Category))
	if err != nil {
		return models.Deal{}, err
	}

	deal := models.Deal{
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		ImageURL:      strings.TrimSpace(in.ImageURL),
		Link:          util.CleanDealLink(in.Link, s.opts.AffiliateTag),
		Category:      category,
		ExpireAt:      expireAt,
		IsHotDeal:     in.IsHotDeal,
	}

	created, err := s.store.CreateDeal(ctx, deal)
	if err != nil {
		return models.Deal{}, upstream("create deal", err)
	}
	slog.Info("New deal added", "id", created.ID, "title", created.Title, "category", created.Category)

	if s.opts.Announcer != nil {
		go s.announce(context.WithoutCancel(ctx), created)
	}
	return created, nil
}

func (s *Service) resolveCategory(ctx context.Context, category string) (string, error) {
	switch s.opts.CategoryPolicy {
	case config.CategoryPolicyStrict:
		names, err := s.ListCategories(ctx)
		if err != nil {
			return "", err
		}
		canonical, ok := findFold(names, category)
		if !ok {
			return "", models.NewValidationError("category", fmt.Sprintf("unknown category %q", category))
		}
		return canonical, nil
	case config.CategoryPolicyRegister:
		names, err := s.ListCategories(ctx)
		if err != nil {
			return "", err
		}
		if canonical, ok := findFold(names, category); ok {
			return canonical, nil
		}
		if _, err := s.AddCategory(ctx, category); err != nil && !errors.Is(err, models.ErrConflict) {
			return "", err
		}
		return category, nil
	default:
		return category, nil
	}
}

func (s *Service) announce(ctx context.Context, deal models.Deal) {
	ctx, cancel := context.WithTimeout(ctx, announceTimeout)
	defer cancel()
	if err := s.opts.Announcer.Announce(ctx, deal); err != nil {
		slog.Warn("Failed to announce new deal", "id", deal.ID, "error", err)
	}
}

// DeleteDeal hard-deletes a deal; models.ErrNotFound when the id is unknown.
func (s *Service) DeleteDeal(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.NewValidationError("id", "is required")
	}
	if err := s.store.DeleteDeal(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("deal %s: %w", id, models.ErrNotFound)
		}
		return upstream("delete deal", err)
	}
	slog.Info("Deal deleted", "id", id)
	return nil
}

// PurgeStaleDeals hard-deletes deals that have left the retention window.
func (s *Service) PurgeStaleDeals(ctx context.Context) (int, error) {
	n, err := s.store.PurgeDeals(ctx, s.opts.Policy.RetentionCutoff(s.now()))
	if err != nil {
		return n, upstream("purge deals", err)
	}
	slog.Info("Purged stale deals", "count", n)
	return n, nil
}

// CategorizeDeal asks the classifier for a category suggestion. The result is
// advisory; callers let the user override it.
func (s *Service) CategorizeDeal(ctx context.Context, title, description string) (string, error) {
	ve := &models.ValidationError{Fields: map[string]string{}}
	if strings.TrimSpace(title) == "" {
		ve.Fields["title"] = "is required"
	}
	if strings.TrimSpace(description) == "" {
		ve.Fields["description"] = "is required"
	}
	if len(ve.Fields) > 0 {
		return "", ve
	}
	if s.opts.Categorizer == nil {
		return "", models.Upstream("categorize deal", errors.New("classifier not configured"))
	}

	category, err := s.opts.Categorizer.Categorize(ctx, title, description)
	if err != nil {
		return "", models.Upstream("categorize deal", err)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return "", models.Upstream("categorize deal", errors.New("classifier returned no category"))
	}
	return category, nil
}

// GetFooterSettings returns stored settings merged over the defaults. A storage
// failure is logged and the defaults are returned.
func (s *Service) GetFooterSettings(ctx context.Context) models.FooterSettings {
	stored, err := s.store.GetFooterSettings(ctx)
	if err != nil {
		slog.Warn("Failed to load footer settings, using defaults", "error", err)
		return s.opts.DefaultFooter
	}
	return stored.MergeOver(s.opts.DefaultFooter)
}

// UpdateFooterSettings validates and upserts the provided fields, returning the merged result.
func (s *Service) UpdateFooterSettings(ctx context.Context, patch models.FooterSettingsPatch) (models.FooterSettings, error) {
	if err := s.validator.ValidateStruct(patch); err != nil {
		return models.FooterSettings{}, err
	}
	fields := patch.Fields()
	if len(fields) == 0 {
		return s.GetFooterSettings(ctx), nil
	}
	if err := s.store.UpdateFooterSettings(ctx, fields); err != nil {
		return models.FooterSettings{}, upstream("update footer settings", err)
	}
	slog.Info("Footer settings updated", "fields", len(fields))
	return s.GetFooterSettings(ctx), nil
}

// EnsureSeeded registers the default categories and, when configured, the demo
// deals. Seeding is best-effort under concurrent first starts.
func (s *Service) EnsureSeeded(ctx context.Context) error {
	if len(s.opts.DefaultCategories) > 0 {
		seeded, err := s.store.SeedCategories(ctx, s.opts.DefaultCategories)
		if err != nil {
			return upstream("seed categories", err)
		}
		if seeded {
			slog.Info("Seeded default categories", "count", len(s.opts.DefaultCategories))
		}
	}
	if len(s.opts.DemoDeals) > 0 {
		seeded, err := s.store.SeedDeals(ctx, s.opts.DemoDeals)
		if err != nil {
			return upstream("seed demo deals", err)
		}
		if seeded {
			slog.Info("Seeded demo deals", "count", len(s.opts.DemoDeals))
		}
	}
	return nil
}

// upstream wraps storage failures, passing domain sentinels through untouched.
func upstream(op string, err error) error {
	if errors.Is(err, models.ErrUpstream) || errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrConflict) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return models.Upstream(op, err)
}
