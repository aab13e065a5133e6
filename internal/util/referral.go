package util

import (
	"net/url"
	"strings"
)

// ApplyAffiliateTag sets the Amazon associate tag on Amazon links. It reports
// whether the link was changed. Non-Amazon links and an empty tag are no-ops.
func ApplyAffiliateTag(rawURL, tag string) (string, bool) {
	if tag == "" {
		return rawURL, false
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, false
	}

	// amzn.to short links redirect server-side and drop the query, so they are left alone.
	if !strings.Contains(strings.ToLower(parsedURL.Hostname()), "amazon.") {
		return rawURL, false
	}

	queryParams := parsedURL.Query()
	if queryParams.Get("tag") == tag {
		return rawURL, false
	}
	queryParams.Set("tag", tag)
	parsedURL.RawQuery = queryParams.Encode()
	return parsedURL.String(), true
}

// CleanDealLink normalises rawURL and applies the affiliate tag.
func CleanDealLink(rawURL, affiliateTag string) string {
	cleaned, err := NormalizeURL(rawURL)
	if err != nil {
		return rawURL
	}
	tagged, _ := ApplyAffiliateTag(cleaned, affiliateTag)
	return tagged
}
