package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

type ListReportsParams struct {
	Limit    *int    `form:"limit,omitempty" json:"limit,omitempty"`
	ClinicId *string `form:"clinic_id,omitempty" json:"clinic_id,omitempty"`
}

type GetAnalyticsParams struct {
	TimeRange *int `form:"timeRange,omitempty" json:"timeRange,omitempty"`
}

type AcknowledgeNotificationParams struct {
	ReceiptHandle *string `form:"receiptHandle,omitempty" json:"receiptHandle,omitempty"`
}

// ServerInterface represents all server handlers
type ServerInterface interface {
	// (GET /v1/reports)
	ListReports(ctx echo.Context, params ListReportsParams) error
	// (GET /v1/analytics)
	GetAnalytics(ctx echo.Context, params GetAnalyticsParams) error
	// (POST /v1/users)
	CreateUser(ctx echo.Context) error
	// (GET /v1/notifications)
	PollNotifications(ctx echo.Context) error
	// (DELETE /v1/notifications/{messageId})
	AcknowledgeNotification(ctx echo.Context, messageId string, params AcknowledgeNotificationParams) error
}

// ServerInterfaceWrapper converts echo contexts to parameters
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) ListReports(ctx echo.Context) error {
	var err error
	var params ListReportsParams

	err = runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}

	err = runtime.BindQueryParameter("form", true, false, "clinic_id", ctx.QueryParams(), &params.ClinicId)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter clinic_id: %s", err))
	}

	return w.Handler.ListReports(ctx, params)
}

func (w *ServerInterfaceWrapper) GetAnalytics(ctx echo.Context) error {
	var params GetAnalyticsParams

	err := runtime.BindQueryParameter("form", true, false, "timeRange", ctx.QueryParams(), &params.TimeRange)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter timeRange: %s", err))
	}

	return w.Handler.GetAnalytics(ctx, params)
}

func (w *ServerInterfaceWrapper) CreateUser(ctx echo.Context) error {
	return w.Handler.CreateUser(ctx)
}

func (w *ServerInterfaceWrapper) PollNotifications(ctx echo.Context) error {
	return w.Handler.PollNotifications(ctx)
}

func (w *ServerInterfaceWrapper) AcknowledgeNotification(ctx echo.Context) error {
	var err error
	var messageId string

	err = runtime.BindStyledParameterWithLocation("simple", false, "messageId", runtime.ParamLocationPath, ctx.Param("messageId"), &messageId)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter messageId: %s", err))
	}

	var params AcknowledgeNotificationParams
	err = runtime.BindQueryParameter("form", true, false, "receiptHandle", ctx.QueryParams(), &params.ReceiptHandle)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter receiptHandle: %s", err))
	}

	return w.Handler.AcknowledgeNotification(ctx, messageId, params)
}

// EchoRouter is implemented by both echo.Echo and echo.Group
type EchoRouter interface {
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

func RegisterHandlers(router EchoRouter, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.GET("/v1/reports", wrapper.ListReports)
	router.GET("/v1/analytics", wrapper.GetAnalytics)
	router.POST("/v1/users", wrapper.CreateUser)
	router.GET("/v1/notifications", wrapper.PollNotifications)
	router.DELETE("/v1/notifications/:messageId", wrapper.AcknowledgeNotification)
}
