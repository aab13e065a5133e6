package models

// LinkPreview is product data read from a merchant page to prefill the admin deal form.
type LinkPreview struct {
	URL           string  `json:"url"`
	Title         string  `json:"title,omitempty"`
	Description   string  `json:"description,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	Price         float64 `json:"price,omitempty"`
	OriginalPrice float64 `json:"originalPrice,omitempty"`
	SiteName      string  `json:"siteName,omitempty"`
}
