package util

import (
	"net/url"
	"strings"
)

// trackingParams are stripped from outbound deal links.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid", "igshid", "mc_cid", "mc_eid", "ref_",
}

// NormalizeURL strips tracking parameters, the fragment and a trailing slash
// from an absolute http(s) URL. Other URLs are returned unchanged.
func NormalizeURL(rawURL string) (string, error) {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL, err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return rawURL, nil
	}

	parsedURL.Host = strings.ToLower(parsedURL.Host)
	parsedURL.Fragment = ""
	if len(parsedURL.Path) > 1 && strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path = strings.TrimSuffix(parsedURL.Path, "/")
		// Clear RawPath so String() regenerates the path without the slash
		parsedURL.RawPath = ""
	}

	queryParams := parsedURL.Query()
	for _, param := range trackingParams {
		queryParams.Del(param)
	}
	parsedURL.RawQuery = queryParams.Encode()
	return parsedURL.String(), nil
}

// GetDomain returns the registrable domain of rawURL ("shop.example.co.uk" -> "example.co.uk").
func GetDomain(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(parsedURL.Hostname()), "www.")
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	lastTwo := strings.Join(parts[len(parts)-2:], ".")
	if KnownTwoPartTLDs[lastTwo] {
		return strings.Join(parts[len(parts)-3:], ".")
	}
	return lastTwo
}
