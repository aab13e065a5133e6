package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pauljones0/deal-finder/internal/models"
)

const (
	dealsCollection      = "deals"
	categoriesCollection = "categories"
	settingsCollection   = "settings"
	metaCollection       = "meta"

	footerDocID          = "footer"
	seedCategoriesMarker = "seed_categories"
	seedDealsMarker      = "seed_deals"
)

type Client struct {
	client *firestore.Client
}

func New(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// ListDeals returns deals with createdAt >= since, newest first.
func (c *Client) ListDeals(ctx context.Context, since time.Time) ([]models.Deal, error) {
	q := c.client.Collection(dealsCollection).Query
	if !since.IsZero() {
		q = q.Where("createdAt", ">=", since)
	}
	iter := q.OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var deals []models.Deal
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate deals: %w", err)
		}
		var deal models.Deal
		if err := doc.DataTo(&deal); err != nil {
			slog.Warn("Skipping unreadable deal document", "id", doc.Ref.ID, "error", err)
			continue
		}
		deal.ID = doc.Ref.ID
		deals = append(deals, deal)
	}
	return deals, nil
}

// CreateDeal stores a new deal under an auto-generated ID. A zero CreatedAt is
// replaced by the server commit timestamp.
func (c *Client) CreateDeal(ctx context.Context, deal models.Deal) (models.Deal, error) {
	docRef := c.client.Collection(dealsCollection).NewDoc()
	wr, err := docRef.Create(ctx, deal)
	if err != nil {
		return models.Deal{}, fmt.Errorf("failed to create deal: %w", err)
	}
	deal.ID = docRef.ID
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = wr.UpdateTime
	}
	return deal, nil
}

func (c *Client) DeleteDeal(ctx context.Context, id string) error {
	_, err := c.client.Collection(dealsCollection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to delete deal %s: %w", id, err)
	}
	return nil
}

// PurgeDeals deletes every deal created before cutoff and returns how many were removed.
func (c *Client) PurgeDeals(ctx context.Context, cutoff time.Time) (int, error) {
	iter := c.client.Collection(dealsCollection).
		Where("createdAt", "<", cutoff).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	bulkWriter := c.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bulkWriter.End()
			return 0, fmt.Errorf("failed to iterate deals for purging: %w", err)
		}
		job, err := bulkWriter.Delete(doc.Ref)
		if err != nil {
			slog.Warn("PurgeDeals: error queueing delete", "id", doc.Ref.ID, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}
	bulkWriter.End()

	deleted := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			slog.Warn("PurgeDeals: delete failed", "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// SeedDeals inserts deals in one transaction guarded by a marker document, so
// concurrent first starts seed at most once.
func (c *Client) SeedDeals(ctx context.Context, deals []models.Deal) (bool, error) {
	coll := c.client.Collection(dealsCollection)
	return c.seedOnce(ctx, seedDealsMarker, coll, len(deals), func(tx *firestore.Transaction) error {
		for _, d := range deals {
			if err := tx.Create(coll.NewDoc(), d); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	docs, err := c.client.Collection(categoriesCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	cats := make([]models.Category, 0, len(docs))
	for _, doc := range docs {
		var cat models.Category
		if err := doc.DataTo(&cat); err != nil {
			slog.Warn("Skipping unreadable category document", "id", doc.Ref.ID, "error", err)
			continue
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// CreateCategory keys the document by the lower-cased name, so Create itself
// rejects case-insensitive duplicates.
func (c *Client) CreateCategory(ctx context.Context, name string) error {
	docRef := c.client.Collection(categoriesCollection).Doc(categoryDocID(name))
	if _, err := docRef.Create(ctx, models.Category{Name: name}); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return models.ErrConflict
		}
		return fmt.Errorf("failed to create category %q: %w", name, err)
	}
	return nil
}

func (c *Client) SeedCategories(ctx context.Context, names []string) (bool, error) {
	coll := c.client.Collection(categoriesCollection)
	return c.seedOnce(ctx, seedCategoriesMarker, coll, len(names), func(tx *firestore.Transaction) error {
		for _, n := range names {
			if err := tx.Set(coll.Doc(categoryDocID(n)), models.Category{Name: n}); err != nil {
				return err
			}
		}
		return nil
	})
}

// seedOnce runs write inside a transaction when neither the marker document
// nor any document of coll exists, then records the marker.
func (c *Client) seedOnce(ctx context.Context, marker string, coll *firestore.CollectionRef, count int, write func(*firestore.Transaction) error) (bool, error) {
	markerRef := c.client.Collection(metaCollection).Doc(marker)
	var seeded bool
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		seeded = false
		if _, err := tx.Get(markerRef); err == nil {
			return nil
		} else if status.Code(err) != codes.NotFound {
			return err
		}

		existing, err := tx.Documents(coll.Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		if err := write(tx); err != nil {
			return err
		}
		seeded = true
		return tx.Create(markerRef, map[string]interface{}{
			"seededAt": firestore.ServerTimestamp,
			"count":    count,
		})
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed %s: %w", marker, err)
	}
	return seeded, nil
}

func (c *Client) GetFooterSettings(ctx context.Context) (models.FooterSettings, error) {
	doc, err := c.client.Collection(settingsCollection).Doc(footerDocID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.FooterSettings{}, nil
		}
		return models.FooterSettings{}, fmt.Errorf("failed to get footer settings: %w", err)
	}
	var settings models.FooterSettings
	if err := doc.DataTo(&settings); err != nil {
		return models.FooterSettings{}, fmt.Errorf("failed to unmarshal footer settings: %w", err)
	}
	return settings, nil
}

// UpdateFooterSettings merges fields into the settings document, creating it if needed.
func (c *Client) UpdateFooterSettings(ctx context.Context, fields map[string]string) error {
	data := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		data[k] = v
	}
	data["updatedAt"] = firestore.ServerTimestamp
	_, err := c.client.Collection(settingsCollection).Doc(footerDocID).Set(ctx, data, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update footer settings: %w", err)
	}
	return nil
}

var docIDEscaper = strings.NewReplacer(".", "%2E", "_", "%5F")

// categoryDocID derives a valid document ID from the case-insensitive name.
func categoryDocID(name string) string {
	return docIDEscaper.Replace(url.PathEscape(categoryKey(name)))
}
