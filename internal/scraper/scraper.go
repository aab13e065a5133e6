package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/pauljones0/deal-finder/internal/models"
	"github.com/pauljones0/deal-finder/internal/util"
)

const (
	maxRetries   = 2
	retryBase    = 500 * time.Millisecond
	maxPageBytes = 2 << 20
	maxRedirects = 5
	userAgent    = "Mozilla/5.0 (compatible; DealFinderPreview/1.0)"
)

// ErrHostNotAllowed is returned for URLs the previewer refuses to fetch.
var ErrHostNotAllowed = errors.New("host not allowed")

// Previewer reads product data from outbound deal links.
type Previewer interface {
	Preview(ctx context.Context, rawURL string) (models.LinkPreview, error)
}

// Client fetches a page and extracts OpenGraph, Twitter card and JSON-LD
// product data. With an empty host allowlist any public host may be fetched;
// loopback and private addresses are refused at dial time.
type Client struct {
	httpClient   *http.Client
	allowedHosts []string
	selectors    SelectorConfig
}

func New(allowedHosts []string, selectors SelectorConfig) *Client {
	c := &Client{
		allowedHosts: allowedHosts,
		selectors:    selectors,
	}
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	if len(allowedHosts) == 0 {
		dialer.Control = refusePrivate
	}
	c.httpClient = &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return c.checkURL(req.URL)
		},
	}
	return c
}

func (c *Client) Preview(ctx context.Context, rawURL string) (models.LinkPreview, error) {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return models.LinkPreview{}, models.NewValidationError("url", "must be a valid URL")
	}
	if err := c.checkURL(parsedURL); err != nil {
		return models.LinkPreview{}, models.NewValidationError("url", err.Error())
	}

	var doc *goquery.Document
	err = util.RetryWithBackoff(ctx, maxRetries, retryBase, func(attempt int) error {
		var fetchErr error
		doc, fetchErr = c.fetchHTMLContent(ctx, parsedURL.String())
		if fetchErr != nil && attempt < maxRetries {
			slog.Warn("Preview fetch failed", "url", parsedURL.String(), "attempt", attempt+1, "error", fetchErr)
		}
		return fetchErr
	})
	if err != nil {
		return models.LinkPreview{}, models.Upstream("fetch preview", err)
	}

	preview := c.extract(doc, parsedURL)
	if preview.Title == "" && preview.ImageURL == "" {
		return models.LinkPreview{}, models.Upstream("fetch preview", fmt.Errorf("no product data found on %s", parsedURL.Host))
	}
	return preview, nil
}

func (c *Client) checkURL(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme %q: only http and https allowed", u.Scheme)
	}
	hostname := strings.ToLower(u.Hostname())
	if hostname == "" {
		return errors.New("URL has no host")
	}
	if len(c.allowedHosts) == 0 {
		return nil
	}
	if slices.ContainsFunc(c.allowedHosts, func(domain string) bool {
		domain = strings.ToLower(domain)
		return hostname == domain || strings.HasSuffix(hostname, "."+domain)
	}) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrHostNotAllowed, hostname)
}

// refusePrivate rejects connections to loopback, private and link-local addresses.
func refusePrivate(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return fmt.Errorf("%w: %s", ErrHostNotAllowed, host)
	}
	return nil
}

func (c *Client) fetchHTMLContent(ctx context.Context, urlStr string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, util.Permanent(fmt.Errorf("failed to create request for URL %s: %w", urlStr, err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrHostNotAllowed) {
			return nil, util.Permanent(err)
		}
		return nil, fmt.Errorf("failed to fetch URL %s: %w", urlStr, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err := fmt.Errorf("failed to fetch URL %s: status code %d", urlStr, res.StatusCode)
		if res.StatusCode >= 400 && res.StatusCode < 500 && res.StatusCode != http.StatusTooManyRequests {
			return nil, util.Permanent(err)
		}
		return nil, err
	}

	body, err := charset.NewReader(io.LimitReader(res.Body, maxPageBytes), res.Header.Get("Content-Type"))
	if err != nil {
		return nil, util.Permanent(fmt.Errorf("unsupported page encoding: %w", err))
	}
	return goquery.NewDocumentFromReader(body)
}

func (c *Client) extract(doc *goquery.Document, pageURL *url.URL) models.LinkPreview {
	preview := models.LinkPreview{
		URL:         pageURL.String(),
		Title:       firstValue(doc, c.selectors.Title),
		Description: firstValue(doc, c.selectors.Description),
		ImageURL:    firstValue(doc, c.selectors.Image),
		SiteName:    firstValue(doc, c.selectors.SiteName),
	}
	if v := firstValue(doc, c.selectors.Price); v != "" {
		preview.Price, _ = util.ParsePrice(v)
	}
	if v := firstValue(doc, c.selectors.OriginalPrice); v != "" {
		preview.OriginalPrice, _ = util.ParsePrice(v)
	}

	// JSON-LD is more reliable than meta tags for price, and fills gaps elsewhere
	if product, ok := findJSONLDProduct(doc); ok {
		if preview.Title == "" {
			preview.Title = strings.TrimSpace(product.Name)
		}
		if preview.Description == "" {
			preview.Description = strings.TrimSpace(product.Description)
		}
		if preview.ImageURL == "" {
			preview.ImageURL = product.imageURL()
		}
		if p := product.price(); p > 0 {
			preview.Price = p
		}
	}

	if preview.ImageURL != "" {
		if ref, err := url.Parse(preview.ImageURL); err == nil {
			preview.ImageURL = pageURL.ResolveReference(ref).String()
		}
	}
	if preview.SiteName == "" {
		preview.SiteName = util.GetDomain(pageURL.String())
	}
	return preview
}

func firstValue(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		for _, attr := range []string{"content", "href", "src"} {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			return text
		}
	}
	return ""
}
