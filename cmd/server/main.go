package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pauljones0/deal-finder/internal/ai"
	"github.com/pauljones0/deal-finder/internal/auth"
	"github.com/pauljones0/deal-finder/internal/catalog"
	"github.com/pauljones0/deal-finder/internal/config"
	"github.com/pauljones0/deal-finder/internal/httpapi"
	"github.com/pauljones0/deal-finder/internal/notifier"
	"github.com/pauljones0/deal-finder/internal/scraper"
	"github.com/pauljones0/deal-finder/internal/seed"
	"github.com/pauljones0/deal-finder/internal/storage"
)

func main() {
	slog.Info("Starting deal finder server...")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	ctx := context.Background()

	var store catalog.Store
	switch cfg.Store {
	case config.StoreMemory:
		store = storage.NewMemory(nil)
	default:
		client, err := storage.New(ctx, cfg.ProjectID)
		if err != nil {
			slog.Error("Critical error initializing Firestore client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		store = client
	}

	defaults, err := seed.Load(cfg.SeedFile)
	if err != nil {
		slog.Error("Critical error loading seed defaults", "error", err)
		os.Exit(1)
	}

	opts := catalog.Options{
		Policy: catalog.Policy{
			Retention:       time.Duration(cfg.RetentionDays) * 24 * time.Hour,
			SoonWindow:      cfg.SoonWindow,
			CheapPriceLimit: cfg.CheapPriceLimit,
			TechCategories:  cfg.TechCategories,
			Location:        cfg.Location(),
		},
		CategoryPolicy:    cfg.CategoryPolicy,
		AffiliateTag:      cfg.AmazonAffiliateTag,
		DefaultCategories: defaults.Categories,
		DefaultFooter:     defaults.FooterSettings(),
	}
	if cfg.SeedDemoDeals {
		opts.DemoDeals = defaults.Deals(time.Now())
	}

	// Leave the interfaces nil when a collaborator is not configured
	gemini, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Warn("Failed to initialize Gemini client, AI categorization disabled", "error", err)
	}
	if gemini != nil {
		opts.Categorizer = gemini.WithKnownCategories(defaults.Categories)
	}
	if discord := notifier.New(cfg.DiscordWebhookURL, cfg.DiscordRatePerMinute); discord.Enabled() {
		opts.Announcer = discord
	}

	svc := catalog.New(store, opts)

	seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := svc.EnsureSeeded(seedCtx); err != nil {
		// Listing seeds lazily, so a failure here is not fatal
		slog.Warn("Failed to seed defaults at startup", "error", err)
	}
	cancel()

	var authz *auth.Authorizer
	if cfg.ProjectID != "" {
		verifier, err := auth.NewFirebaseVerifier(ctx, cfg.ProjectID)
		if err != nil {
			slog.Error("Critical error initializing Firebase Auth", "error", err)
			os.Exit(1)
		}
		authz = auth.New(verifier, cfg.AdminClaim, cfg.AdminEmails)
	} else {
		slog.Warn("GOOGLE_CLOUD_PROJECT not set, admin API disabled")
	}

	srv := httpapi.New(":"+cfg.Port, httpapi.Deps{
		Catalog:        svc,
		Auth:           authz,
		Previewer:      scraper.New(cfg.PreviewAllowedHosts, scraper.LoadConfig(cfg.PreviewSelectors)),
		RequestTimeout: cfg.RequestTimeout,
	})

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	if err := srv.Start(); err != nil {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
