package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/pauljones0/deal-finder/internal/models"
	"github.com/pauljones0/deal-finder/internal/util"
)

const (
	colorRegularDeal = 3092790  // #2F3136
	colorHotDeal     = 16711680 // #FF0000

	maxAttempts       = 4
	baseBackoff       = 250 * time.Millisecond
	maxRetryAfter     = 30 * time.Second
	maxDescriptionLen = 300
)

// Client posts new deals to a Discord webhook.
type Client struct {
	webhookURL  string
	client      *http.Client
	rateLimiter *rate.Limiter
}

// New returns a webhook client allowing perMinute messages per minute. An
// empty webhookURL yields a client whose sends are no-ops.
func New(webhookURL string, perMinute int) *Client {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &Client{
		webhookURL:  webhookURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

// Enabled reports whether a webhook is configured.
func (c *Client) Enabled() bool { return c != nil && c.webhookURL != "" }

// Announce posts deal to the channel.
func (c *Client) Announce(ctx context.Context, deal models.Deal) error {
	_, err := c.Send(ctx, deal)
	return err
}

// Send posts a deal notification and returns the Discord message ID.
func (c *Client) Send(ctx context.Context, deal models.Deal) (string, error) {
	if !c.Enabled() {
		return "", nil
	}
	embed := formatDealToEmbed(deal)
	return c.sendAndGetMessageID(ctx, embed)
}

type discordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

type discordEmbedThumbnail struct {
	URL string `json:"url,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}

type discordEmbed struct {
	Title       string                `json:"title,omitempty"`
	Description string                `json:"description,omitempty"`
	URL         string                `json:"url,omitempty"`
	Timestamp   string                `json:"timestamp,omitempty"`
	Color       int                   `json:"color,omitempty"`
	Thumbnail   discordEmbedThumbnail `json:"thumbnail,omitempty"`
	Fields      []discordEmbedField   `json:"fields,omitempty"`
	Footer      discordEmbedFooter    `json:"footer,omitempty"`
}

type discordMessageResponse struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

func formatDealToEmbed(deal models.Deal) discordEmbed {
	title := deal.Title
	color := colorRegularDeal
	if deal.IsHotDeal {
		title = "🔥 " + title
		color = colorHotDeal
	}

	description := deal.Description
	if runes := []rune(description); len(runes) > maxDescriptionLen {
		description = string(runes[:maxDescriptionLen-1]) + "…"
	}

	fields := []discordEmbedField{
		{Name: "Price", Value: formatPrice(deal), Inline: true},
	}
	if deal.Category != "" {
		fields = append(fields, discordEmbedField{Name: "Category", Value: deal.Category, Inline: true})
	}
	if !deal.ExpireAt.IsZero() {
		fields = append(fields, discordEmbedField{Name: "Expires", Value: fmt.Sprintf("<t:%d:R>", deal.ExpireAt.Unix()), Inline: true})
	}

	var timestamp string
	if !deal.CreatedAt.IsZero() {
		timestamp = deal.CreatedAt.Format(time.RFC3339)
	}

	return discordEmbed{
		Title:       title,
		URL:         deal.Link,
		Description: description,
		Timestamp:   timestamp,
		Color:       color,
		Thumbnail:   discordEmbedThumbnail{URL: deal.ImageURL},
		Fields:      fields,
		Footer:      discordEmbedFooter{Text: util.GetDomain(deal.Link)},
	}
}

func formatPrice(deal models.Deal) string {
	price := strconv.FormatFloat(deal.Price, 'f', 2, 64)
	pct := deal.DiscountPercent()
	if pct == 0 {
		return price
	}
	original := strconv.FormatFloat(deal.OriginalPrice, 'f', 2, 64)
	return fmt.Sprintf("%s ~~%s~~ (-%d%%)", price, original, pct)
}

func (c *Client) sendAndGetMessageID(ctx context.Context, embed discordEmbed) (string, error) {
	payloadBytes, err := json.Marshal(discordWebhookPayload{Embeds: []discordEmbed{embed}})
	if err != nil {
		return "", err
	}

	parsedURL, err := url.Parse(c.webhookURL)
	if err != nil {
		return "", err
	}
	q := parsedURL.Query()
	q.Set("wait", "true")
	parsedURL.RawQuery = q.Encode()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, parsedURL.String(), bytes.NewReader(payloadBytes))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if !sleep(ctx, baseBackoff<<attempt) {
				return "", ctx.Err()
			}
			continue
		}

		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var msgResponse discordMessageResponse
			if err := json.Unmarshal(bodyBytes, &msgResponse); err != nil {
				return "", err
			}
			return msgResponse.ID, nil
		}

		lastErr = fmt.Errorf("discord status: %s, body: %s", resp.Status, string(bodyBytes))
		backoff := retryBackoff(resp, attempt)
		if backoff == 0 {
			return "", lastErr
		}
		slog.Warn("Discord webhook request failed, retrying", "status", resp.StatusCode, "attempt", attempt+1, "backoff", backoff)
		if !sleep(ctx, backoff) {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("discord webhook failed after %d attempts: %w", maxAttempts, lastErr)
}

// retryBackoff returns how long to wait before retrying resp, or zero when the
// status is not retryable. 429 honours Retry-After.
func retryBackoff(resp *http.Response, attempt int) time.Duration {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64); err == nil && secs > 0 {
			return min(time.Duration(secs*float64(time.Second)), maxRetryAfter)
		}
		return baseBackoff << attempt
	case resp.StatusCode >= 500:
		return baseBackoff << attempt
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
