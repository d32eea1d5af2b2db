package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/scam-shield/internal/analysis"
	"github.com/lueurxax/scam-shield/internal/app"
	"github.com/lueurxax/scam-shield/internal/core/domain"
	"github.com/lueurxax/scam-shield/internal/platform/config"
	db "github.com/lueurxax/scam-shield/internal/storage"
)

func main() {
	mode := flag.String("mode", "worker", "Service mode (worker, analyze)")
	text := flag.String("text", "", "Content text to analyze (analyze mode)")
	district := flag.String("district", "", "Requesting user's district (analyze mode)")
	lang := flag.String("lang", "", "Content language as a BCP-47 tag (analyze mode)")
	urls := flag.String("urls", "", "Comma-separated URLs extracted from the content (analyze mode)")
	kind := flag.String("kind", string(domain.ContentText), "Content kind (text, image_text, voice_text)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolOpts := db.PoolOptions{
		MaxConns:          cfg.DBMaxConnections,
		MinConns:          cfg.DBMinConnections,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	}

	database, err := db.NewWithOptions(ctx, cfg.PostgresDSN, poolOpts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	application := app.New(cfg, database, &logger)

	// Start health server in background
	go func() {
		if err := application.StartHealthServer(ctx); err != nil {
			logger.Error().Err(err).Msg("health check server error")
		}
	}()

	if err := runMode(ctx, application, *mode, analyzeFlags{
		text:     *text,
		district: *district,
		lang:     *lang,
		urls:     *urls,
		kind:     *kind,
	}); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

type analyzeFlags struct {
	text     string
	district string
	lang     string
	urls     string
	kind     string
}

func runMode(ctx context.Context, application *app.App, mode string, flags analyzeFlags) error {
	switch mode {
	case "worker":
		return application.RunWorker(ctx)
	case "analyze":
		return runAnalyze(ctx, application, flags)
	default:
		log.Fatalf("Usage: %s --mode=[worker|analyze]", os.Args[0])

		return nil
	}
}

// runAnalyze runs one request through the engine and prints the output
// as indented JSON.
func runAnalyze(ctx context.Context, application *app.App, flags analyzeFlags) error {
	req := analysis.Request{
		Content: domain.Content{
			Kind:             domain.ContentKind(flags.kind),
			Text:             flags.text,
			Language:         flags.lang,
			LanguageDetected: flags.lang != "",
		},
		District: flags.district,
	}

	if flags.urls != "" {
		for _, rawURL := range strings.Split(flags.urls, ",") {
			if trimmed := strings.TrimSpace(rawURL); trimmed != "" {
				req.URLs = append(req.URLs, trimmed)
			}
		}
	}

	output, err := application.Analyze(ctx, req)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	encoded, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	fmt.Println(string(encoded))

	return nil
}
