package main

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/flexprice/donorsync/internal/api"
	v1 "github.com/flexprice/donorsync/internal/api/v1"
	"github.com/flexprice/donorsync/internal/cache"
	"github.com/flexprice/donorsync/internal/config"
	"github.com/flexprice/donorsync/internal/domain/fund"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/publisher"
	"github.com/flexprice/donorsync/internal/repository"
	"github.com/flexprice/donorsync/internal/sentry"
	"github.com/flexprice/donorsync/internal/service"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// A missing .env is fine outside local development
	_ = godotenv.Load()

	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.ProvideCache,

			// Event Publisher
			publisher.NewPubSub,
			publisher.NewEventPublisher,

			// Repositories
			repository.NewRepositories,
		),
		sentry.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewFundCache,
			service.NewServiceParams,
			service.NewReconciliationService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			warmFundCache,
			closePublisher,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	reconciliationService service.ReconciliationService,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(logger),
		Webhook: v1.NewWebhookHandler(reconciliationService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger, sentrySvc *sentry.Service) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, sentrySvc)
}

// warmFundCache loads every active accounting unit before webhooks are served
func warmFundCache(lc fx.Lifecycle, fundCache *service.FundCache, fundRepo fund.Repository, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := fundCache.Load(ctx, fundRepo); err != nil {
				log.Errorw("failed to load accounting units", "error", err)
				return err
			}
			log.Infow("accounting units loaded", "count", fundCache.Len())
			return nil
		},
	})
}

func closePublisher(lc fx.Lifecycle, eventPublisher publisher.EventPublisher, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing event publisher")
			return eventPublisher.Close()
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(lc, r, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

// startAWSLambdaAPI hands the router to the Lambda runtime once every start
// hook has run
func startAWSLambdaAPI(lc fx.Lifecycle, r *gin.Engine, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting AWS Lambda API handler...")
			ginLambda := ginadapter.New(r)
			go lambda.Start(ginLambda.ProxyWithContext)
			return nil
		},
	})
}
