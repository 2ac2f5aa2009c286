package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mxcd/go-config/config"
	"github.com/mxcd/journalfiles/internal/files"
	"github.com/mxcd/journalfiles/internal/server"
	"github.com/mxcd/journalfiles/internal/store"
	"github.com/mxcd/journalfiles/internal/util"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := util.InitConfig(); err != nil {
		log.Panic().Err(err).Msg("error initializing config")
	}
	config.Print()

	if err := util.InitLogger(); err != nil {
		log.Panic().Err(err).Msg("error initializing logger")
	}

	fileOptions, err := util.LoadFileOptions()
	if err != nil {
		log.Panic().Err(err).Msg("error reading file retrieval config")
	}

	ctx := context.Background()

	recordStore, closeStore := initStore(ctx)
	defer closeStore()

	fetcher := &files.SchemeFetcher{
		HTTP: files.NewHTTPFetcher(&files.HTTPFetcherOptions{
			Timeout:  fileOptions.FetchTimeout,
			RetryMax: fileOptions.FetchRetryMax,
			MaxBytes: fileOptions.FetchMaxBytes,
		}),
	}

	var presigner server.Presigner
	if fileOptions.S3Region != "" {
		s3Fetcher, err := files.NewS3Fetcher(ctx, &files.S3FetcherOptions{
			Region:     fileOptions.S3Region,
			Timeout:    fileOptions.FetchTimeout,
			MaxBytes:   fileOptions.FetchMaxBytes,
			PresignTTL: fileOptions.S3PresignTTL,
		})
		if err != nil {
			log.Panic().Err(err).Msg("error initializing s3 fetcher")
		}
		fetcher.S3 = s3Fetcher
		presigner = s3Fetcher
		log.Info().Str("region", fileOptions.S3Region).Msg("s3 storage enabled")
	}

	s, err := server.NewServer(&server.ServerOptions{
		DevMode:   config.Get().Bool("DEV"),
		Port:      config.Get().Int("PORT"),
		Store:     recordStore,
		Fetcher:   fetcher,
		Resolver:  files.NewLocalResolver(fileOptions.StorageRoot, fileOptions.LegacyRoots),
		Presigner: presigner,
	})
	if err != nil {
		log.Panic().Err(err).Msg("error initializing server")
	}

	if err := s.RegisterRoutes(); err != nil {
		log.Panic().Err(err).Msg("error registering routes")
	}

	// Start server in a goroutine so we can listen for shutdown signals
	go func() {
		if err := s.Run(); err != nil {
			log.Panic().Err(err).Msg("error running server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.Shutdown(shutdownCtx)
	log.Info().Msg("server shutdown complete")
}

// initStore builds the record store selected by STORE_DRIVER.
func initStore(ctx context.Context) (store.RecordStore, func()) {
	switch driver := config.Get().String("STORE_DRIVER"); driver {
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, config.Get().String("DATABASE_URL"))
		if err != nil {
			log.Panic().Err(err).Msg("error connecting to postgres")
		}
		if err := pg.CreateTables(ctx); err != nil {
			log.Panic().Err(err).Msg("error creating record tables")
		}
		return pg, pg.Close
	case "memory":
		mem := store.NewMemoryStore()
		if seed := config.Get().String("SEED_FILE"); seed != "" {
			if err := mem.LoadSeedFile(seed); err != nil {
				log.Panic().Err(err).Msg("error loading seed file")
			}
		}
		return mem, func() {}
	default:
		log.Panic().Str("driver", driver).Msg("unknown STORE_DRIVER: must be 'memory' or 'postgres'")
		return nil, nil
	}
}
