package scraper

import (
	"embed"
	"log/slog"
)

//go:embed selectors.json
var embeddedSelectors embed.FS

// LoadConfig resolves the preview selectors in the following order:
// 1. External file at path, when set
// 2. Embedded selectors.json
// 3. Hardcoded defaults
func LoadConfig(path string) SelectorConfig {
	if path != "" {
		if sel, err := LoadSelectors(path); err == nil {
			slog.Info("Loaded preview selectors from external file", "path", path)
			return sel
		} else {
			slog.Warn("Failed to load external preview selectors, trying embedded", "path", path, "error", err)
		}
	}

	data, err := embeddedSelectors.ReadFile("selectors.json")
	if err == nil {
		sel, parseErr := LoadSelectorsFromBytes(data)
		if parseErr == nil {
			return sel
		}
		slog.Warn("Embedded preview selectors failed to parse", "error", parseErr)
	}

	slog.Info("Using hardcoded default preview selectors")
	return DefaultSelectors()
}
