// Orivyx backend: admin API for the marketing site. Serves the user
// directory panel (proxying the external Overlord directory service),
// the leads inbox, and the VPS monitor dashboard.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/orivyx/orivyx-backend/internal/api/middleware"
	"github.com/orivyx/orivyx-backend/internal/api/rest"
	"github.com/orivyx/orivyx-backend/internal/api/websocket"
	"github.com/orivyx/orivyx-backend/internal/config"
	"github.com/orivyx/orivyx-backend/internal/directory"
	"github.com/orivyx/orivyx-backend/internal/monitor"
	"github.com/orivyx/orivyx-backend/internal/pkg/logger"
	"github.com/orivyx/orivyx-backend/internal/repository"
)

const version = "1.0.0"

func main() {
	log := logger.StdLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Leads storage.
	repo, err := repository.NewSQLiteRepository(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	if err := repo.RunMigrations(repository.Schema); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Directory (Overlord) integration.
	tokens := directory.NewClientCredentialsTokenSource(
		cfg.IdPTokenURL, cfg.IdPClientID, cfg.IdPClientSecret, cfg.IdPAudience,
		time.Duration(cfg.DirectoryTimeoutSec)*time.Second)
	dirClient := directory.NewClient(
		cfg.DirectoryBaseURL, tokens, time.Duration(cfg.DirectoryTimeoutSec)*time.Second)
	store := directory.NewStore(dirClient, log)
	auditReader := directory.NewAuditReader(dirClient, log)

	// VPS monitor.
	monClient := monitor.NewClient(
		cfg.MonitorBaseURL, cfg.MonitorAPIKey,
		time.Duration(cfg.MonitorTimeoutSec)*time.Second,
		time.Duration(cfg.MonitorHistoryTTLSec)*time.Second,
		log)

	hub := websocket.NewHub(ctx, monClient, log)
	go hub.Run()
	defer hub.Stop()
	wsHandler := websocket.NewHandler(ctx, hub, log)

	// Router.
	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.StructuredLog)
	router.Use(middleware.Recover)
	router.Use(middleware.Auth(cfg))
	router.Use(middleware.RateLimitLeads(cfg.LeadRatePerMin, cfg.LeadRateBurst))
	router.Use(middleware.MaxBodySize(int64(cfg.LeadMaxBodyBytes)))

	router.HandleFunc("/health", rest.Health(version)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/ws/monitor", wsHandler.ServeWS)

	api := router.PathPrefix("/api/v1").Subrouter()
	rest.NewLeadsHandler(repo).RegisterRoutes(api)
	rest.NewOverlordHandler(store, dirClient, auditReader).RegisterRoutes(api)
	rest.NewMonitorHandler(monClient).RegisterRoutes(api)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      corsHandler,
		ReadTimeout:  time.Duration(cfg.RequestTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("starting server", "port", cfg.Port, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	// Warm the directory snapshot in the background so the first dashboard
	// request is fast. A failure here is not fatal: the store retries on the
	// next read or explicit refresh.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.DirectoryTimeoutSec)*time.Second)
		defer cancel()
		if err := store.Refresh(warmCtx); err != nil {
			log.Warn("initial directory refresh failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
