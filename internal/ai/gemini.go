package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// generator is the slice of the genai API the classifier needs; *genai.Models satisfies it.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client suggests deal categories with Gemini structured output.
type Client struct {
	models  generator
	modelID string
	known   []string
}

type categorizeResult struct {
	Category string `json:"category"`
}

var categorizeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"category": {
			Type:        genai.TypeString,
			Description: "The single most appropriate shopping category for the deal, e.g. \"Electronics\" or \"Fashion\".",
		},
	},
	Required: []string{"category"},
}

// NewClient returns a Gemini-backed classifier. A nil client is returned when
// no API key is configured.
func NewClient(ctx context.Context, apiKey, modelID string) (*Client, error) {
	if apiKey == "" {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{models: client.Models, modelID: modelID}, nil
}

// WithKnownCategories biases suggestions towards already registered names.
func (c *Client) WithKnownCategories(names []string) *Client {
	if c == nil {
		return nil
	}
	cp := *c
	cp.known = append([]string(nil), names...)
	return &cp
}

// Categorize returns a category label for the deal.
func (c *Client) Categorize(ctx context.Context, title, description string) (string, error) {
	if c == nil || c.models == nil {
		return "", errors.New("gemini client not configured")
	}

	resp, err := c.models.GenerateContent(ctx, c.modelID, genai.Text(c.prompt(title, description)), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.1), // Low temperature for deterministic output
		ResponseMIMEType: "application/json",
		ResponseSchema:   categorizeSchema,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no response candidates from gemini")
	}

	// Models occasionally wrap JSON in a markdown fence despite the MIME type
	jsonStr := strings.TrimSpace(resp.Text())
	jsonStr = strings.TrimPrefix(jsonStr, "```json")
	jsonStr = strings.TrimPrefix(jsonStr, "```")
	jsonStr = strings.TrimSuffix(jsonStr, "```")

	var result categorizeResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(jsonStr)), &result); err != nil {
		return "", fmt.Errorf("failed to parse gemini response: %w", err)
	}
	category := strings.TrimSpace(result.Category)
	if category == "" {
		return "", errors.New("gemini returned an empty category")
	}
	return category, nil
}

func (c *Client) prompt(title, description string) string {
	var b strings.Builder
	b.WriteString("You are an expert in categorizing shopping deals based on their titles and descriptions.\n\n")
	b.WriteString("Analyze the following deal and determine the most appropriate category. Return only the category name.\n")
	if len(c.known) > 0 {
		fmt.Fprintf(&b, "Prefer one of these existing categories when it fits: %s.\n", strings.Join(c.known, ", "))
	}
	fmt.Fprintf(&b, "\nTitle: %q\nDescription: %q\n", title, description)
	return b.String()
}
