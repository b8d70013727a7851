package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/triade-beauty/intake/internal/handlers"
	"github.com/triade-beauty/intake/internal/mapping"
	"github.com/triade-beauty/intake/internal/platform/config"
	pfirestore "github.com/triade-beauty/intake/internal/platform/firestore"
	"github.com/triade-beauty/intake/internal/platform/jobs"
	"github.com/triade-beauty/intake/internal/platform/monday"
	"github.com/triade-beauty/intake/internal/platform/observability"
	"github.com/triade-beauty/intake/internal/platform/secrets"
	"github.com/triade-beauty/intake/internal/repositories"
	firestoreRepo "github.com/triade-beauty/intake/internal/repositories/firestore"
	"github.com/triade-beauty/intake/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	envValues, err := config.EnvironmentValues()
	if err != nil {
		logger.Fatal("failed to read environment values", zap.Error(err))
	}

	fetcher, err := newSecretFetcher(ctx, logger, envValues)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx,
		config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)),
		config.WithRequiredSecrets(requiredSecretNames(envValues)...),
	)
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			logger.Fatal("missing required secrets", zap.Strings("secrets", missing.RedactedNames()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	buildInfo := buildInfoFromEnv(envValues, startedAt)

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	mondayClient, err := monday.NewClient(cfg.Monday.Token,
		monday.WithEndpoint(cfg.Monday.Endpoint),
		monday.WithTimeout(cfg.Monday.Timeout),
	)
	if err != nil {
		logger.Fatal("failed to initialise monday client", zap.Error(err))
	}

	registry := mapping.NewArtistRegistry(
		mapping.WithRelationBoardIDs(cfg.Monday.HairstylistBoardID, cfg.Monday.MUABoardID),
	)
	decisions := mapping.NewDecisionResolver(registry)

	var notifier services.SubmissionNotifier
	if cfg.Events.Enabled {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.Events.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		topic := pubsubClient.Topic(cfg.Events.Topic)
		defer topic.Stop()

		notifier, err = jobs.NewPubSubSubmissionPublisher(topic)
		if err != nil {
			logger.Fatal("failed to initialise submission publisher", zap.Error(err))
		}
	}

	intakeLogger := logger.Named("intake")
	intakeService, err := services.NewIntakeService(services.IntakeServiceDeps{
		Board:     mondayClient,
		Registry:  registry,
		Decisions: decisions,
		Notifier:  notifier,
		BoardID:   cfg.Monday.BoardID,
		Clock:     time.Now,
		Logger:    zapEventLogger(intakeLogger),
	})
	if err != nil {
		logger.Fatal("failed to initialise intake service", zap.Error(err))
	}

	contactsBoardID := cfg.Monday.ContactsBoardID
	if contactsBoardID == 0 {
		contactsBoardID = cfg.Monday.BoardID
	}
	triadeService, err := services.NewTriadeService(services.TriadeServiceDeps{
		Board:               mondayClient,
		ContactsBoardID:     contactsBoardID,
		SigningSecret:       cfg.Triade.SigningSecret,
		RequireSignedTokens: cfg.Triade.RequireSignedTokens,
		LinkBaseURL:         cfg.Triade.LinkBaseURL,
		Clock:               time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise triade service", zap.Error(err))
	}

	formConfigRepo, err := firestoreRepo.NewFormConfigRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise form config repository", zap.Error(err))
	}
	formConfigService, err := services.NewFormConfigService(services.FormConfigServiceDeps{
		Repository: formConfigRepo,
	})
	if err != nil {
		logger.Fatal("failed to initialise form config service", zap.Error(err))
	}

	boardService, err := services.NewBoardService(services.BoardServiceDeps{Board: mondayClient})
	if err != nil {
		logger.Fatal("failed to initialise board service", zap.Error(err))
	}

	systemService, err := newSystemService(firestoreClient, mondayClient, cfg, buildInfo)
	if err != nil {
		logger.Warn("health: system service init failed", zap.Error(err))
	}

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(cfg.Firestore.ProjectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(cfg.Firestore.ProjectID),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(systemService)),
		handlers.WithFormRoutes(handlers.NewFormHandlers(intakeService,
			handlers.WithSubmitRateLimit(30, time.Minute)).Routes),
		handlers.WithTriadeRoutes(handlers.NewTriadeHandlers(triadeService).Routes),
		handlers.WithFormConfigRoutes(handlers.NewFormConfigHandlers(formConfigService).Routes),
		handlers.WithBoardItemRoutes(handlers.NewBoardItemHandlers(boardService).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("intake api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func zapEventLogger(logger *zap.Logger) func(context.Context, string, map[string]any) {
	return func(_ context.Context, event string, fields map[string]any) {
		zFields := make([]zap.Field, 0, len(fields)+1)
		zFields = append(zFields, zap.String("event", event))
		for k, v := range fields {
			zFields = append(zFields, zap.Any(k, v))
		}
		logger.Debug("service log", zFields...)
	}
}

func buildInfoFromEnv(env map[string]string, started time.Time) services.BuildInfo {
	lookup := func(key string) string {
		if env == nil {
			return ""
		}
		return strings.TrimSpace(env[key])
	}

	version := lookup("API_BUILD_VERSION")
	if version == "" {
		version = "dev"
	}
	commit := lookup("API_BUILD_COMMIT_SHA")
	if commit == "" {
		commit = "unknown"
	}
	environment := strings.ToLower(lookup("API_ENVIRONMENT"))
	if environment == "" {
		environment = "local"
	}
	return services.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: environment,
		StartedAt:   started,
	}
}

func newSystemService(client *firestore.Client, board *monday.Client, cfg config.Config, build services.BuildInfo) (services.SystemService, error) {
	checks := make([]repositories.DependencyCheck, 0, 2)
	if client != nil {
		c := client
		checks = append(checks, repositories.DependencyCheck{
			Name:    "firestore",
			Timeout: 1500 * time.Millisecond,
			Check: func(ctx context.Context) error {
				iter := c.Collections(ctx)
				_, err := iter.Next()
				if errors.Is(err, iterator.Done) {
					return nil
				}
				return err
			},
		})
	}
	if board != nil {
		boardID := cfg.Monday.BoardID
		checks = append(checks, repositories.DependencyCheck{
			Name:    "monday",
			Timeout: 3 * time.Second,
			Check: func(ctx context.Context) error {
				_, err := board.Columns(ctx, boardID)
				if errors.Is(err, monday.ErrBoardNotFound) {
					return fmt.Errorf("board %d not visible to the configured token", boardID)
				}
				return err
			},
		})
	}
	if len(checks) == 0 {
		return nil, errors.New("health: no dependency checks configured")
	}
	repo, err := repositories.NewDependencyHealthRepository(checks)
	if err != nil {
		return nil, err
	}
	return services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: repo,
		Clock:            time.Now,
		Build:            build,
	})
}

func newSecretFetcher(ctx context.Context, logger *zap.Logger, env map[string]string) (*secrets.Fetcher, error) {
	lookup := func(key string) string {
		if env == nil {
			return ""
		}
		if value, ok := env[key]; ok {
			return strings.TrimSpace(value)
		}
		return ""
	}

	envLabel := strings.ToLower(lookup("API_ENVIRONMENT"))
	if envLabel == "" {
		envLabel = "local"
	}
	defaultProject := lookup("API_SECRET_DEFAULT_PROJECT_ID")
	if defaultProject == "" {
		defaultProject = lookup("API_FIRESTORE_PROJECT_ID")
	}
	fallbackPath := lookup("API_SECRET_FALLBACK_FILE")
	if fallbackPath == "" {
		fallbackPath = ".secrets.local"
	}
	credentialsFile := lookup("API_GOOGLE_CREDENTIALS_FILE")

	opts := []secrets.Option{
		secrets.WithEnvironment(envLabel),
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithFallbackFile(fallbackPath),
	}
	if defaultProject != "" {
		opts = append(opts, secrets.WithDefaultProject(defaultProject))
	}
	if credentialsFile != "" {
		opts = append(opts, secrets.WithClientOptions(option.WithCredentialsFile(credentialsFile)))
	}

	return secrets.NewFetcher(ctx, opts...)
}

func requiredSecretNames(env map[string]string) []string {
	required := []string{"Monday.Token"}
	if env != nil {
		if signed := strings.TrimSpace(env["API_TRIADE_REQUIRE_SIGNED_TOKENS"]); strings.EqualFold(signed, "true") || signed == "1" {
			required = append(required, "Triade.SigningSecret")
		}
	}
	return required
}
