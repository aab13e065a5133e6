package scraper

import (
	"encoding/json"
	"fmt"
	"os"
)

// SelectorConfig lists, per preview field, the CSS selectors tried in order.
// A match yields its content, href or src attribute, else its text.
type SelectorConfig struct {
	Title         []string `json:"title"`
	Description   []string `json:"description"`
	Image         []string `json:"image"`
	Price         []string `json:"price"`
	OriginalPrice []string `json:"original_price"`
	SiteName      []string `json:"site_name"`
}

// LoadSelectors loads the selector configuration from the specified JSON file.
func LoadSelectors(path string) (SelectorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to read selector config file: %w", err)
	}

	return LoadSelectorsFromBytes(data)
}

// LoadSelectorsFromBytes parses selector configuration from raw JSON bytes.
func LoadSelectorsFromBytes(data []byte) (SelectorConfig, error) {
	var config SelectorConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to parse selector config JSON: %w", err)
	}
	if len(config.Title) == 0 {
		return SelectorConfig{}, fmt.Errorf("selector config has no title selectors")
	}
	return config, nil
}

// DefaultSelectors returns the fallback configuration if no JSON file is loaded.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		Title: []string{
			`meta[property="og:title"]`,
			`meta[name="twitter:title"]`,
			`h1#productTitle`,
			`title`,
		},
		Description: []string{
			`meta[property="og:description"]`,
			`meta[name="twitter:description"]`,
			`meta[name="description"]`,
		},
		Image: []string{
			`meta[property="og:image:secure_url"]`,
			`meta[property="og:image"]`,
			`meta[name="twitter:image"]`,
			`link[rel="image_src"]`,
		},
		Price: []string{
			`meta[property="product:price:amount"]`,
			`meta[property="og:price:amount"]`,
			`[itemprop="price"]`,
		},
		OriginalPrice: []string{
			`meta[property="product:original_price:amount"]`,
		},
		SiteName: []string{
			`meta[property="og:site_name"]`,
		},
	}
}
