package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"quizboard-service/internal/app"
	"quizboard-service/internal/auth"
	"quizboard-service/internal/config"
	"quizboard-service/internal/infra/postgres"
	"quizboard-service/internal/infra/rabbit"
	transport "quizboard-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	provider, err := auth.NewJWTProvider(cfg.Auth.JWTSecret)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		applied, err := postgres.Migrate(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		log.WithField("migrations", applied).Info("schema up to date")
	}

	finalPort := resolvePort(portFlag, cfg)

	stores, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	if cfg.SeedEnabled() {
		if err := seedQuestions(ctx, stores.questions, log); err != nil {
			return err
		}
	}

	ranker := app.NewLeaderboardRanker(stores.scores, stores.users, cfg.Leaderboard.Limit)
	hub := app.NewLeaderboardHub(ranker, log)
	engineOpts := []app.EngineOption{app.WithLogger(log), app.OnRecord(hub.RecordHook())}
	if cfg.AMQP.URL != "" {
		publisher, err := rabbit.Dial(cfg.AMQP.URL, log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		engineOpts = append(engineOpts, app.OnRecord(publisher.RecordHook()))
		log.WithField("exchange", rabbit.ScoreExchange).Info("publishing score events")
	}
	engine := app.NewQuizEngine(stores.questions, stores.sessions, stores.scores, engineOpts...)

	handler := transport.NewHandler(engine, ranker, stores.users, provider, transport.Options{
		LoginURL:      cfg.Auth.LoginURL,
		SessionCookie: cfg.Session.Cookie,
		SessionTTL:    config.TTLDuration(cfg.Session.TTL, 24*time.Hour),
		Logger:        log,
	})
	router := transport.NewRouter(handler, transport.NewWSHandler(hub, ranker, log))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      withCORS(router, cfg.CORS.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quizboard")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// resolvePort prefers the flag (or PORT), then server.port, then 8080.
func resolvePort(flag string, cfg config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.Server.Port != "" {
		return cfg.Server.Port
	}
	return "8080"
}

// withCORS leaves the router untouched when no origins are configured.
func withCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler(h)
}

func seedQuestions(ctx context.Context, bank app.QuestionBank, log logrus.FieldLogger) error {
	seeded, err := bank.SeedIfEmpty(ctx, app.DefaultQuestions())
	if err != nil {
		return err
	}
	if seeded {
		log.WithField("count", len(app.DefaultQuestions())).Info("seeded default questions")
	}
	return nil
}
