package scraper

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pauljones0/deal-finder/internal/util"
)

// jsonLDProduct is the subset of a schema.org Product node used for previews.
// Fields that schema.org allows in several shapes stay raw.
type jsonLDProduct struct {
	Type        json.RawMessage `json:"@type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       json.RawMessage `json:"image"`
	Offers      json.RawMessage `json:"offers"`
}

type jsonLDOffer struct {
	Price    json.RawMessage `json:"price"`
	LowPrice json.RawMessage `json:"lowPrice"`
}

// findJSONLDProduct returns the first Product node embedded in the page.
func findJSONLDProduct(doc *goquery.Document) (jsonLDProduct, bool) {
	var found jsonLDProduct
	ok := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true
		}
		if node, hit := walkForProduct(raw); hit {
			b, _ := json.Marshal(node)
			ok = json.Unmarshal(b, &found) == nil
		}
		return !ok
	})
	return found, ok
}

func walkForProduct(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if n, ok := walkForProduct(item); ok {
				return n, true
			}
		}
	case map[string]any:
		if isProductType(t["@type"]) {
			return t, true
		}
		if graph, ok := t["@graph"]; ok {
			return walkForProduct(graph)
		}
	}
	return nil, false
}

func isProductType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, "Product")
	case []any:
		for _, item := range t {
			if isProductType(item) {
				return true
			}
		}
	}
	return false
}

// imageURL accepts a string, a list of strings or an ImageObject.
func (p jsonLDProduct) imageURL() string {
	var s string
	if json.Unmarshal(p.Image, &s) == nil {
		return s
	}
	var list []json.RawMessage
	if json.Unmarshal(p.Image, &list) == nil && len(list) > 0 {
		return jsonLDProduct{Image: list[0]}.imageURL()
	}
	var obj struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(p.Image, &obj) == nil {
		return obj.URL
	}
	return ""
}

// price returns the offer price, or the low price of an AggregateOffer.
func (p jsonLDProduct) price() float64 {
	var offers []jsonLDOffer
	var single jsonLDOffer
	if json.Unmarshal(p.Offers, &single) == nil {
		offers = []jsonLDOffer{single}
	} else if json.Unmarshal(p.Offers, &offers) != nil {
		return 0
	}
	for _, o := range offers {
		for _, raw := range []json.RawMessage{o.Price, o.LowPrice} {
			if v := rawNumber(raw); v > 0 {
				return v
			}
		}
	}
	return 0
}

func rawNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if v, err := util.ParsePrice(s); err == nil {
			return v
		}
	}
	return 0
}
