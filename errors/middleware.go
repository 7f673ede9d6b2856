package errors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

func CustomHTTPErrorHandler(err error, c echo.Context) {
	e := HttpError{}
	if errors.As(err, &e) {
		message := err.Error()
		if e.Code >= http.StatusInternalServerError {
			// Upstream failure details stay in the logs
			message = e.Err.Error()
		}
		c.Echo().DefaultHTTPErrorHandler(echo.NewHTTPError(e.Code, message), c)
		return
	}
	c.Echo().DefaultHTTPErrorHandler(err, c)
}
