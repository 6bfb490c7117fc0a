package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")

	// ErrMalformedResponse marks a 2xx response whose body could not be
	// decoded. The protocol treats it as a soft success with no data rather
	// than a retryable failure.
	ErrMalformedResponse = errors.New("malformed response body")
)
