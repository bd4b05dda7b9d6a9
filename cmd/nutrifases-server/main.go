package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutrifases-backend/internal/config"
	"nutrifases-backend/internal/llm"
	"nutrifases-backend/internal/logging"
	"nutrifases-backend/internal/server"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	persona, err := llm.LoadPersona(cfg.PersonaFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.PersonaFile).Msg("failed to load persona")
	}

	// A missing or broken credential must not stop the process: chat
	// requests answer with a configuration error until it is fixed.
	completer, err := llm.New(context.Background(), cfg, persona, logger)
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.Provider).Msg("completion backend not configured; chat requests will fail")
		completer = nil
	}
	if c, ok := completer.(io.Closer); ok {
		defer c.Close()
	}

	s := server.NewServer(cfg, completer, persona, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logger.Info().
		Str("addr", srv.Addr).
		Str("provider", cfg.Provider).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("strict_navigation", cfg.StrictNavigation).
		Msg("NutriFases chat proxy listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
}
