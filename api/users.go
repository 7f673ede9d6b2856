package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medisys-health/diagnostics/users"
)

func (h *Handler) CreateUser(ec echo.Context) error {
	ctx := ec.Request().Context()
	dto := users.NewUser{}
	if err := ec.Bind(&dto); err != nil {
		return err
	}

	result, err := h.users.Create(ctx, dto)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, result)
}
