// Package seed holds the default categories, footer links and demo deals that
// are written into an empty store.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pauljones0/deal-finder/internal/models"
)

//go:embed defaults.yaml
var embeddedDefaults []byte

// Defaults is the parsed seed file.
type Defaults struct {
	Categories []string      `yaml:"categories"`
	Footer     footerEntry   `yaml:"footer"`
	DemoDeals  []demoDealRow `yaml:"demo_deals"`
}

type footerEntry struct {
	PrivacyPolicyURL       string `yaml:"privacy_policy_url"`
	TermsOfServiceURL      string `yaml:"terms_of_service_url"`
	AffiliateDisclaimerURL string `yaml:"affiliate_disclaimer_url"`
	TwitterURL             string `yaml:"twitter_url"`
	GithubURL              string `yaml:"github_url"`
	LinkedinURL            string `yaml:"linkedin_url"`
	YoutubeURL             string `yaml:"youtube_url"`
}

type demoDealRow struct {
	Title         string        `yaml:"title"`
	Description   string        `yaml:"description"`
	Price         float64       `yaml:"price"`
	OriginalPrice float64       `yaml:"original_price"`
	ImageURL      string        `yaml:"image_url"`
	Link          string        `yaml:"link"`
	Category      string        `yaml:"category"`
	Hot           bool          `yaml:"hot"`
	CreatedAgo    time.Duration `yaml:"created_ago"`
	ExpiresIn     time.Duration `yaml:"expires_in"`
}

// Load parses the seed file at path, or the embedded defaults when path is empty.
func Load(path string) (Defaults, error) {
	data := embeddedDefaults
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Defaults{}, fmt.Errorf("read seed file: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes seed YAML.
func Parse(data []byte) (Defaults, error) {
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, fmt.Errorf("parse seed file: %w", err)
	}
	for i, row := range d.DemoDeals {
		if row.Title == "" || row.Price <= 0 || row.OriginalPrice <= 0 {
			return Defaults{}, fmt.Errorf("demo deal %d: title and positive prices are required", i)
		}
	}
	return d, nil
}

// FooterSettings returns the footer defaults.
func (d Defaults) FooterSettings() models.FooterSettings {
	return models.FooterSettings{
		PrivacyPolicyURL:       d.Footer.PrivacyPolicyURL,
		TermsOfServiceURL:      d.Footer.TermsOfServiceURL,
		AffiliateDisclaimerURL: d.Footer.AffiliateDisclaimerURL,
		TwitterURL:             d.Footer.TwitterURL,
		GithubURL:              d.Footer.GithubURL,
		LinkedinURL:            d.Footer.LinkedinURL,
		YoutubeURL:             d.Footer.YoutubeURL,
	}
}

// Deals materialises the demo deals with times relative to now, newest first
// as listed in the file.
func (d Defaults) Deals(now time.Time) []models.Deal {
	deals := make([]models.Deal, 0, len(d.DemoDeals))
	for _, row := range d.DemoDeals {
		deals = append(deals, models.Deal{
			Title:         row.Title,
			Description:   row.Description,
			Price:         row.Price,
			OriginalPrice: row.OriginalPrice,
			ImageURL:      row.ImageURL,
			Link:          row.Link,
			Category:      row.Category,
			CreatedAt:     now.Add(-row.CreatedAgo),
			ExpireAt:      now.Add(row.ExpiresIn),
			IsHotDeal:     row.Hot,
		})
	}
	return deals
}
