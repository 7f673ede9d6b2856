package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medisys-health/diagnostics/pointer"
	"github.com/medisys-health/diagnostics/reports/query"
)

func (h *Handler) ListReports(ec echo.Context, params ListReportsParams) error {
	ctx := ec.Request().Context()
	access, err := accessContext(ctx)
	if err != nil {
		return err
	}

	list, err := h.query.List(ctx, access, query.Params{
		Limit:        pointer.Default(params.Limit, 0),
		ClinicFilter: pointer.Default(params.ClinicId, ""),
	})
	if err != nil {
		return err
	}

	h.logger.Infow("listed reports", "role", access.Role, "clinicId", access.ClinicId, "count", len(list))
	return ec.JSON(http.StatusOK, list)
}
