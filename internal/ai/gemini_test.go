package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(f.text, genai.RoleModel),
		}},
	}, nil
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		genErr  error
		want    string
		wantErr bool
	}{
		{name: "plain json", text: `{"category":"Electronics"}`, want: "Electronics"},
		{name: "fenced json", text: "```json\n{\"category\": \" Fashion \"}\n```", want: "Fashion"},
		{name: "empty category", text: `{"category":""}`, wantErr: true},
		{name: "not json", text: "Electronics", wantErr: true},
		{name: "api error", genErr: errors.New("quota exceeded"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{text: tt.text, err: tt.genErr}
			c := &Client{models: gen, modelID: "test-model"}
			got, err := c.Categorize(context.Background(), "55\" 4K TV", "OLED panel, 120Hz")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Categorize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Categorize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategorize_RequestShape(t *testing.T) {
	gen := &fakeGenerator{text: `{"category":"TV"}`}
	c := (&Client{models: gen, modelID: "test-model"}).WithKnownCategories([]string{"TV", "Books"})
	if _, err := c.Categorize(context.Background(), "Big TV", "Huge screen"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gen.prompt, "Big TV") || !strings.Contains(gen.prompt, "Huge screen") {
		t.Errorf("prompt missing deal text: %s", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "TV, Books") {
		t.Errorf("prompt missing known categories: %s", gen.prompt)
	}
	if gen.config.ResponseMIMEType != "application/json" || gen.config.ResponseSchema == nil {
		t.Errorf("expected structured JSON output config, got %+v", gen.config)
	}
}

func TestNilClient(t *testing.T) {
	c, err := NewClient(context.Background(), "", "gemini-2.5-flash")
	if err != nil || c != nil {
		t.Fatalf("NewClient(no key) = %v, %v; want nil, nil", c, err)
	}
	if _, err := c.Categorize(context.Background(), "t", "d"); err == nil {
		t.Error("nil client should fail to categorize")
	}
}
