package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"

	"github.com/abhik-roy/mtg-card-collection-app/internal/api"
	"github.com/abhik-roy/mtg-card-collection-app/internal/config"
	"github.com/abhik-roy/mtg-card-collection-app/internal/database"
	"github.com/abhik-roy/mtg-card-collection-app/internal/services"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	config.SetupLogging(cfg.Logging)

	if err := database.Initialize(cfg.Database.Path, config.GormLogLevel(cfg.Logging)); err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to initialize database")
	}
	db := database.GetDB()

	scryfallService := services.NewScryfallService(
		services.WithScryfallBaseURL(cfg.Scryfall.BaseURL),
		services.WithScryfallRateLimit(cfg.Scryfall.RateLimit),
		services.WithScryfallTimeout(cfg.Scryfall.GetTimeout()),
		services.WithScryfallCacheSize(cfg.Scryfall.CacheSize),
	)

	userService := services.NewUserService(db)
	cardService := services.NewCardService(db, scryfallService)
	snapshotService := services.NewSnapshotService(db, cfg.Snapshot.Schedule)
	collectionService := services.NewCollectionService(db, cardService, snapshotService)
	watchService := services.NewWatchService(db, cardService)
	portfolioService := services.NewPortfolioService(db, userService, watchService)
	priceWorker := services.NewPriceWorker(db, scryfallService, cfg.Prices.GetInterval(), cfg.Prices.BatchSize)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	defaultUser, err := userService.EnsureDefaultUser(ctx, cfg.DefaultUserEmail)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create default user")
	}

	// Start price worker in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Error().Str("panic", fmt.Sprint(r)).Msg("price worker panicked, restarting in 30 seconds")
					}
				}()
				priceWorker.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				log.Info().Msg("price worker restarting after panic recovery")
			}
		}
	}()

	go func() {
		if err := snapshotService.Start(ctx); err != nil {
			log.Error().Err(err).Msg("snapshot service stopped")
		}
	}()

	router := api.SetupRouter(cfg.Server, api.Services{
		Users:         userService,
		Cards:         cardService,
		Collection:    collectionService,
		Watches:       watchService,
		Portfolio:     portfolioService,
		Snapshots:     snapshotService,
		PriceWorker:   priceWorker,
		DefaultUserID: defaultUser.ID,
	})

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	// Stops the price worker and the snapshot schedule
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
