// Package main provides the player entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/mgrn/tonearm/internal/app/nowplaying"
	"github.com/mgrn/tonearm/internal/app/persist"
	"github.com/mgrn/tonearm/internal/app/playback"
	"github.com/mgrn/tonearm/internal/app/queue"
	"github.com/mgrn/tonearm/internal/infra/config"
	"github.com/mgrn/tonearm/internal/infra/docstore"
	"github.com/mgrn/tonearm/internal/infra/logger"
	"github.com/mgrn/tonearm/internal/infra/mpv"
	"github.com/mgrn/tonearm/internal/infra/saavn"
)

var (
	app        = kingpin.New("tonearm", "tonearm music player")
	configPath = app.Flag("config", "Path to config file").Default("config/player.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: console)").String()

	startCmd    = app.Command("start", "Start the player (default)").Default()
	startTracks = startCmd.Arg("track", "Track names to queue at startup").Strings()

	// resolve command: one search round trip, for diagnosing the search API
	resolveCmd  = app.Command("resolve", "Resolve a track name and exit")
	resolveName = resolveCmd.Arg("name", "Track name to resolve").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger from flags first so config errors are logged
	if err := logger.Init(flagLoggerConfig(logger.Config{Output: "console", Level: "info"})); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Re-initialize with configured settings; flags win
	if err := logger.Init(flagLoggerConfig(logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
	})); err != nil {
		zlog.Fatal().Msgf("Failed to initialize logger: %v", err)
	}

	switch command {
	case resolveCmd.FullCommand():
		err = runResolve(cfg, *resolveName)
	default:
		err = run(cfg, *startTracks)
	}
	if err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

// flagLoggerConfig applies command-line overrides to a logger config.
func flagLoggerConfig(base logger.Config) logger.Config {
	if *verbose {
		base.Level = "debug"
	}
	if *logfile != "" {
		base.Output = "file"
		base.File = *logfile
	}
	return base
}

// run executes the main player logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config, startupTracks []string) error {
	ctx := context.Background()

	resolver, err := saavn.New(saavn.Config{
		BaseURL: cfg.Resolver.BaseURL,
		Timeout: cfg.ResolverTimeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to create search client: %w", err)
	}

	docs, err := docstore.New(docstore.Config{
		BaseURL:      cfg.Store.BaseURL,
		TokenURL:     cfg.Store.TokenURL,
		ClientID:     cfg.Store.ClientID,
		ClientSecret: cfg.Store.ClientSecret,
		Timeout:      cfg.StoreTimeout(),
		SessionID:    uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("failed to create document store client: %w", err)
	}

	device, err := mpv.New(mpv.Config{Volume: cfg.Player.Volume})
	if err != nil {
		return fmt.Errorf("failed to create audio device: %w", err)
	}
	defer func() { _ = device.Close() }()

	session := playback.NewSession(cfg.Player.Volume)
	store := queue.NewStore()
	controller := playback.NewController(resolver, device, store, session, playback.Config{
		Quality: cfg.Resolver.Quality,
	})
	syncer := persist.New(docs, store)

	adapter, err := nowplaying.New(controller, session, store, device)
	if err != nil {
		return fmt.Errorf("failed to create now-playing adapter: %w", err)
	}
	defer func() { _ = adapter.Close() }()

	go logSessionEvents(session.Subscribe())

	// Resume the saved queue; a failed read is not fatal, playback still works
	if err := syncer.Hydrate(ctx, cfg.Store.UserID); err != nil {
		zlog.Warn().Msgf("Continuing without saved queue: %v", err)
	}

	if len(startupTracks) > 0 {
		controller.PlayNow(startupTracks)
	}

	zlog.Info().Msg("Player started")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	zlog.Info().Msgf("Received signal %v, shutting down", sig)

	// Let in-flight queue writes land before exit
	syncer.Flush()
	return nil
}

// logSessionEvents mirrors playback milestones into the log.
func logSessionEvents(events <-chan playback.Event) {
	for e := range events {
		switch e.Type {
		case playback.EventTrackChanged:
			if e.Track != nil {
				zlog.Info().Msgf("Now playing: %s - %s", e.Track.PrimaryArtist(), e.Track.Name)
			}
		case playback.EventStatusChanged:
			zlog.Debug().Msgf("Playback status: %s", e.Status)
		case playback.EventTrackEnded:
			zlog.Debug().Msgf("Track ended: index=%d", e.Index)
		case playback.EventError:
			zlog.Warn().Msgf("Playback: %s", e.Err)
		case playback.EventProgressChanged:
			// Too chatty to log
		}
	}
}

func runResolve(cfg *config.Config, name string) error {
	client, err := saavn.New(saavn.Config{
		BaseURL: cfg.Resolver.BaseURL,
		Timeout: cfg.ResolverTimeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to create search client: %w", err)
	}

	resolved, err := client.Resolve(context.Background(), name)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	fmt.Printf("Name:    %s\n", resolved.Name)
	fmt.Printf("Artist:  %s\n", resolved.PrimaryArtist())
	fmt.Printf("Album:   %s\n", resolved.Album)
	fmt.Printf("Artwork: %s\n", resolved.ArtworkURL)
	for _, s := range resolved.Streams {
		fmt.Printf("Stream:  %-8s %s\n", s.Quality, s.URL)
	}
	return nil
}
