package api

import (
	"github.com/brpaz/echozap"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	oapiMiddleware "github.com/oapi-codegen/echo-middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/auth"
	"github.com/medisys-health/diagnostics/authz"
	"github.com/medisys-health/diagnostics/errors"
)

type ServerParams struct {
	fx.In

	Handler       *Handler
	HealthCheck   *HealthCheck
	Authorizer    authz.RequestAuthorizer
	Authenticator auth.Authenticator
	Metrics       *Metrics
	Gatherer      prometheus.Gatherer
	Logger        *zap.Logger
}

func NewServer(p ServerParams) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	swagger, err := GetSwagger()
	if err != nil {
		return nil, err
	}

	// Do not validate servers in the open api spec
	swagger.Servers = nil

	// Skip auth, validation and logging for readiness probe and metrics routes
	skipper := RouteSkipper([]string{"/ready", "/metrics"})
	authMiddleware := auth.NewAuthMiddleware(p.Authenticator, auth.AuthMiddlewareOpts{
		Skipper: skipper,
	})
	requestValidator := oapiMiddleware.OapiRequestValidatorWithOptions(swagger, &oapiMiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: p.Authorizer.Authorize,
		},
		Skipper: skipper,
	})
	loggerMiddleware := func(next echo.HandlerFunc) echo.HandlerFunc {
		log := echozap.ZapLogger(p.Logger)(next)
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}
			return log(c)
		}
	}

	e.Use(middleware.Recover())
	e.Use(loggerMiddleware)
	e.Use(p.Metrics.Middleware(skipper))
	e.Use(authMiddleware)
	e.Use(requestValidator)

	e.HTTPErrorHandler = errors.CustomHTTPErrorHandler

	e.GET("/ready", p.HealthCheck.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))
	RegisterHandlers(e, p.Handler)

	return e, nil
}
