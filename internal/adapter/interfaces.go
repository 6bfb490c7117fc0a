// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Evermood Labs

// Package adapter provides transport-layer abstractions for communicating
// with the remote sync API.
//
// The primary abstraction is [SyncTransport], which decouples the service
// layer from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPSyncTransport]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401).
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/evermood/syncengine/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// SyncTransport defines transport-agnostic communication with the remote
// sync API. Implementations are responsible for serialisation, bearer-token
// header management, and mapping transport-level errors to the sentinel
// values defined in this package.
type SyncTransport interface {
	// FetchChanges performs the incremental delta request: everything that
	// changed since the given cursor, restricted to dataTypes. An absent or
	// empty response body is returned as a successful envelope with no data.
	// Returns a wrapped [ErrMalformedResponse] if the body cannot be decoded.
	FetchChanges(ctx context.Context, since time.Time, dataTypes []models.DataType) (*models.DeltaResponse, error)

	// Execute replays an arbitrary request against its original endpoint and
	// method. Used by the offline mutation queue, which stores the request
	// verbatim. Returns an error if the request fails or the server responds
	// with a non-2xx status.
	Execute(ctx context.Context, method, endpoint string, payload json.RawMessage) error
}

// TokenSource is the surface of the auth collaborator the engine consumes.
// The engine makes no auth decisions itself: it attaches whatever bearer
// token the source currently holds and namespaces storage by the current
// user ID. Clearing local data on logout is the collaborator's job.
type TokenSource interface {
	// UserID returns the identifier of the currently signed-in user, or an
	// empty string when nobody is signed in.
	UserID() string

	// Token returns the current bearer token, or an empty string if none is
	// available.
	Token() string
}
