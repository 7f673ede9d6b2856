package errors

import (
	"errors"
	"net/http"
)

var (
	NotFound             = HttpError{http.StatusNotFound, errors.New("not found")}
	BadRequest           = HttpError{http.StatusBadRequest, errors.New("bad request")}
	Unauthenticated      = HttpError{http.StatusUnauthorized, errors.New("unauthenticated")}
	AccountMisconfigured = HttpError{http.StatusBadRequest, errors.New("account misconfigured")}
	Forbidden            = HttpError{http.StatusForbidden, errors.New("insufficient permissions")}
	Conflict             = HttpError{http.StatusConflict, errors.New("conflict")}
	UpstreamUnavailable  = HttpError{http.StatusInternalServerError, errors.New("upstream unavailable")}
	InternalServerError  = HttpError{http.StatusInternalServerError, errors.New("internal server error")}
)

type HttpError struct {
	Code int
	Err  error
}

func (h HttpError) Unwrap() error {
	return h.Err
}

func (h HttpError) Error() string {
	return h.Err.Error()
}

// StatusCode returns the http status of the first HttpError in the chain of err,
// or 500 if there is none.
func StatusCode(err error) int {
	e := HttpError{}
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}
