package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/auth"
	"github.com/medisys-health/diagnostics/authz"
	"github.com/medisys-health/diagnostics/config"
	"github.com/medisys-health/diagnostics/ingest"
	"github.com/medisys-health/diagnostics/landing"
	"github.com/medisys-health/diagnostics/logger"
	"github.com/medisys-health/diagnostics/mailer"
	"github.com/medisys-health/diagnostics/notifications"
	"github.com/medisys-health/diagnostics/outbox"
	"github.com/medisys-health/diagnostics/reports"
	"github.com/medisys-health/diagnostics/reports/dynamo"
	"github.com/medisys-health/diagnostics/reports/query"
	"github.com/medisys-health/diagnostics/reports/repository"
	"github.com/medisys-health/diagnostics/store"
	"github.com/medisys-health/diagnostics/users"
)

func Start(e *echo.Echo, cfg *config.Config, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(fmt.Sprintf(":%d", cfg.HttpPort)); err != nil && err != http.ErrServerClosed {
					logger.Errorw("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

type ReadinessParams struct {
	fx.In

	HealthCheck *HealthCheck
	Database    *mongo.Database `optional:"true"`
	Lifecycle   fx.Lifecycle
}

func SetReady(p ReadinessParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.Database != nil {
				if err := p.Database.Client().Ping(ctx, nil); err != nil {
					return err
				}
			}

			// It's important this is set after the stores are initialized, which is ensured
			// by taking a dependency on them in the constructors, because lifecycle hooks
			// are executed in topological order
			p.HealthCheck.SetReady(true)
			return nil
		},
	})
}

// Dependencies returns the service DI graph. Backends are selected from the environment
// and mongo is only connected to when a backend needs it.
func Dependencies() []fx.Option {
	cfg, err := config.NewConfig()
	if err != nil {
		return []fx.Option{fx.Error(err)}
	}

	deps := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(
			logger.NewProductionLogger,
			logger.Suggar,
			config.NewAWSConfig,
			func() prometheus.Registerer { return prometheus.DefaultRegisterer },
			func() prometheus.Gatherer { return prometheus.DefaultGatherer },
			users.NewCognitoClient,
			fx.Annotate(users.NewCognitoDirectory, fx.As(new(users.Directory))),
			users.NewService,
			mailer.NewSESClient,
			fx.Annotate(mailer.NewSESSender, fx.As(new(mailer.Sender))),
			mailer.NewRelay,
			notifications.NewEmitter,
			landing.NewObjectStore,
			query.NewEngine,
			ingest.NewClinicResolver,
			ingest.NewMetrics,
			newProcessor,
			auth.NewAuthenticator,
			authz.NewRequestAuthorizer,
			NewMetrics,
			NewHealthCheck,
			NewHandler,
			NewServer,
		),
	}

	if cfg.ReportsBackend == config.BackendMongo || cfg.QueueBackend == config.BackendOutbox {
		deps = append(deps, fx.Provide(
			store.NewConfig,
			store.NewClient,
			store.NewDatabase,
		))
	}

	switch cfg.ReportsBackend {
	case config.BackendDynamoDB:
		deps = append(deps, fx.Provide(
			dynamo.NewClient,
			fx.Annotate(dynamo.NewRepository, fx.As(new(reports.Repository))),
		))
	default:
		deps = append(deps, fx.Provide(
			fx.Annotate(repository.NewRepository, fx.As(new(reports.Repository))),
		))
	}

	switch cfg.QueueBackend {
	case config.BackendSQS:
		deps = append(deps, fx.Provide(
			notifications.NewSQSClient,
			fx.Annotate(notifications.NewSQSQueue, fx.As(new(notifications.Queue))),
		))
	default:
		deps = append(deps, fx.Provide(
			fx.Annotate(outbox.NewRepository, fx.As(new(notifications.Queue))),
		))
	}

	return deps
}

func newProcessor(objects landing.ObjectStore, repository reports.Repository, emitter *notifications.Emitter, relay *mailer.Relay, resolver *ingest.ClinicResolver, metrics *ingest.Metrics, logger *zap.SugaredLogger) *ingest.Processor {
	return ingest.NewProcessor(objects, repository, emitter, relay, resolver, metrics, logger)
}

func MainLoop() {
	deps := append(Dependencies(), fx.Invoke(SetReady), fx.Invoke(Start))
	fx.New(deps...).Run()
}
