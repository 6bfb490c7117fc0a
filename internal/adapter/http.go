package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/evermood/syncengine/internal/config"
	"github.com/evermood/syncengine/internal/logger"
	"github.com/evermood/syncengine/models"
)

const deltaPath = "/api/sync/changes"

type httpSyncTransport struct {
	client *resty.Client
	tokens TokenSource

	logger *logger.Logger
}

// NewHTTPSyncTransport constructs an HTTP/REST implementation of
// [SyncTransport]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and configures the underlying resty client with the
// resolved base URL and request timeout. The bearer token is looked up from
// tokens on every request, so a token refresh in the auth collaborator is
// picked up without rebuilding the transport.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPSyncTransport(adapterCfg config.EngineAdapter, tokens TokenSource, logger *logger.Logger) (SyncTransport, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpSyncTransport{client: client, tokens: tokens, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// FetchChanges implements [SyncTransport]. It GETs the delta endpoint with
// the cursor serialised as RFC3339 and the requested entity kinds as a
// comma-separated list. An empty body is a valid "nothing changed" reply and
// is returned as a successful empty envelope. Returns a wrapped
// [ErrMalformedResponse] if a non-empty body cannot be decoded.
func (h *httpSyncTransport) FetchChanges(ctx context.Context, since time.Time, dataTypes []models.DataType) (*models.DeltaResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParam("since", since.UTC().Format(time.RFC3339)).
		SetQueryParam("types", joinDataTypes(dataTypes)).
		Get(deltaPath)
	if err != nil {
		return nil, fmt.Errorf("fetch changes request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return &models.DeltaResponse{Success: true}, nil
	}

	var dr models.DeltaResponse
	if err = json.Unmarshal(body, &dr); err != nil {
		return nil, fmt.Errorf("%w: decode delta response: %v", ErrMalformedResponse, err)
	}

	return &dr, nil
}

// Execute implements [SyncTransport]. It replays a queued mutation against
// its original endpoint with its original method and body. Returns an error
// mapped via the package sentinels if the server rejects the request.
func (h *httpSyncTransport) Execute(ctx context.Context, method, endpoint string, payload json.RawMessage) error {
	req := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json")
	if len(payload) > 0 {
		req.SetBody(payload)
	}

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		return fmt.Errorf("replay %s %s: %w", method, endpoint, err)
	}

	return mapHTTPError(resp)
}

func (h *httpSyncTransport) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.tokens.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func joinDataTypes(dataTypes []models.DataType) string {
	parts := make([]string, 0, len(dataTypes))
	for _, t := range dataTypes {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ",")
}
