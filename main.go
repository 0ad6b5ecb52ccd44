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

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"gopherwatch/internal/config"
	"gopherwatch/internal/controllers"
	"gopherwatch/internal/db"
	"gopherwatch/internal/logger"
	"gopherwatch/internal/routes"
	"gopherwatch/internal/services"
	"gopherwatch/internal/tui"
)

const (
	shutdownTimeout = 5 * time.Second
	tuiLogFile      = "gopherwatch.log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("GopherWatch failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logOutput := cfg.LogOutput
	if cfg.TUI && logOutput == "stdout" {
		// the terminal belongs to the TUI
		logOutput = tuiLogFile
	}

	lg, err := logger.New(logger.Config{Level: cfg.LogLevel, Output: logOutput})
	if err != nil {
		return err
	}

	defer func() {
		if err := lg.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing log file: %v\n", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var servers []*http.Server

	if cfg.Demo {
		var store services.AlertStore

		if cfg.DemoAlertDSN != "" {
			if store, err = db.Open(ctx, cfg.DemoAlertDSN); err != nil {
				return err
			}
		}

		backend := services.NewDemoBackend(services.DemoConfig{
			Agents:     cfg.DemoAgents,
			SampleHost: services.SampleLocalHost,
			Store:      store,
		}, lg)

		defer func() {
			if err := backend.Close(); err != nil {
				lg.Error().Err(err).Msg("Error closing alert store")
			}
		}()

		go backend.Run(ctx, cfg.RefreshInterval)

		servers = append(servers, serve(lg, "demo backend", cfg.DemoAddr,
			routes.NewBackendEngine(&controllers.BackendController{Backend: backend}, lg, cfg.RateLimit)))
	}

	state := services.NewState()
	client := services.NewBackendClient(cfg.BackendURL, cfg.RequestTimeout, nil)

	poller, err := services.NewPoller(services.PollerConfig{
		StatusSource: client,
		AlertSource:  client,
		StatusCell:   state.Status,
		AlertCell:    state.Alerts,
		Interval:     cfg.RefreshInterval,
	}, lg)
	if err != nil {
		return err
	}

	self := services.NewSelfCollector(services.SampleSelf, lg)
	self.Start(ctx, cfg.RefreshInterval)

	dashboard, err := routes.NewDashboardEngine(&controllers.DashboardController{
		State:       state,
		Diagnostics: poller,
		Self:        self,
		Location:    cfg.Location,
		Refresh:     cfg.RefreshInterval,
	}, cfg.CORSOrigins, lg, cfg.RateLimit)
	if err != nil {
		return err
	}

	servers = append(servers, serve(lg, "dashboard", cfg.ListenAddr, dashboard))

	handle, err := poller.Start(ctx)
	if err != nil {
		return err
	}

	lg.Info().
		Str("backend", cfg.BackendURL).
		Str("listen", cfg.ListenAddr).
		Bool("demo", cfg.Demo).
		Bool("tui", cfg.TUI).
		Msg("GopherWatch started")

	if cfg.TUI {
		if err := tui.Run(ctx, tui.NewModel(state, poller, cfg.Location, cfg.RefreshInterval)); err != nil {
			lg.Error().Err(err).Msg("Terminal dashboard failed")
		}

		stop()
	} else {
		<-ctx.Done()
	}

	lg.Info().Msg("Shutdown signal received. Shutting down gracefully...")

	if err := poller.Stop(handle); err != nil {
		lg.Error().Err(err).Msg("Failed to stop poller")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Error().Err(err).Str("addr", srv.Addr).Msg("HTTP server shutdown forced")
		}
	}

	lg.Info().Msg("GopherWatch shutdown complete")

	return nil
}

func serve(lg logger.Logger, name, addr string, handler http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		lg.Info().Str("server", name).Str("addr", addr).Msg("HTTP server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Str("server", name).Msg("HTTP server failed")
		}
	}()

	return srv
}
