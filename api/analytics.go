package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medisys-health/diagnostics/analytics"
	"github.com/medisys-health/diagnostics/pointer"
)

func (h *Handler) GetAnalytics(ec echo.Context, params GetAnalyticsParams) error {
	ctx := ec.Request().Context()
	access, err := accessContext(ctx)
	if err != nil {
		return err
	}

	days := pointer.Default(params.TimeRange, h.query.DefaultTimeRangeDays())

	now := h.now()
	list, err := h.query.ListForAnalytics(ctx, access, days, now)
	if err != nil {
		return err
	}

	result := analytics.Aggregate(list, days, now)
	result.Metadata = analytics.NewMetadata(access, days, len(list), now)

	return ec.JSON(http.StatusOK, result)
}
