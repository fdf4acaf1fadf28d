package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bellaleprasann20/Chat-App/internal/auth"
	"github.com/bellaleprasann20/Chat-App/internal/config"
	"github.com/bellaleprasann20/Chat-App/internal/handler"
	personahandler "github.com/bellaleprasann20/Chat-App/internal/handler/persona"
	"github.com/bellaleprasann20/Chat-App/internal/handler/randomchat"
	"github.com/bellaleprasann20/Chat-App/internal/handler/realtime"
	"github.com/bellaleprasann20/Chat-App/internal/logging"
	"github.com/bellaleprasann20/Chat-App/internal/model/persona"
	"github.com/bellaleprasann20/Chat-App/internal/service/bot"
	"github.com/bellaleprasann20/Chat-App/internal/service/chat"
	"github.com/bellaleprasann20/Chat-App/internal/service/matchmaking"
)

// developmentSecret signs tokens when JWT_SECRET is unset in development.
const developmentSecret = "development-only-secret"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.Env, cfg.LogLevel)
	if envErr != nil {
		logger.Warn().Err(envErr).Msg("no .env file, continuing with system environment variables only")
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		logger.Warn().Msg("JWT_SECRET not set, using the development secret")
		secret = developmentSecret
	}
	verifier := auth.NewJWTVerifier(secret)

	personas := persona.NewMemoryStore(persona.Seed())
	store := chat.NewStore()
	responder, err := newResponder(ctx, cfg, store, personas, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise bot responder")
	}

	hub := realtime.NewHub(logger)
	engine, err := matchmaking.NewEngine(matchmaking.Options{
		Store:     store,
		Matcher:   chat.NewMatcher(store),
		Bot:       responder,
		Transport: hub,
		Timings:   cfg.Match,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise matchmaking engine")
	}

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("matchmaking loop exited")
		}
	}()

	router := handler.NewRouter(handler.Deps{
		Verifier:    verifier,
		Realtime:    realtime.New(hub, engine, verifier, handler.OriginChecker(cfg.Server.CORSOrigins), logger),
		RandomChat:  randomchat.New(engine, 0, logger),
		Personas:    personahandler.New(personas, cfg.Bot.PersonaID),
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	startServer(ctx, cfg.Server, router, logger)

	<-engineDone
	engine.Wait()
	logger.Info().Msg("shutdown complete")
}

func newResponder(ctx context.Context, cfg *config.Config, store *chat.Store, personas persona.Store, logger zerolog.Logger) (*bot.Responder, error) {
	backend, err := bot.NewBackend(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("bot backend unavailable, falling back to rule-based replies")
		backend = nil
	}

	responder, err := bot.NewResponder(bot.Options{
		Enabled: cfg.Bot.Enabled,
		Backend: backend,
		History: store,
		Persona: persona.Resolve(personas, cfg.Bot.PersonaID),
		Timeout: cfg.Bot.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	info := responder.Info()
	logger.Info().
		Bool("enabled", info.Enabled).
		Str("mode", info.Mode).
		Str("backend", info.Backend).
		Msg("bot responder ready")
	return responder, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger zerolog.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("random chat backend listening")
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
