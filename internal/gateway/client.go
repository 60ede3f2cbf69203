package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fentz26/dx/internal/ident"
)

// DefaultClientTimeout bounds a single HTTP round trip. Callers usually
// set a tighter per-call deadline on the context.
const DefaultClientTimeout = 60 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 64 << 20

// Client is the HTTP implementation of Gateway. It speaks the platform's
// "POST /<id>/describe" API with a pre-authenticated bearer token.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	logger     *slog.Logger
	jobTry     *int
	newID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request/response tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithJobTry asks for a specific restart attempt when describing jobs.
func WithJobTry(try int) Option {
	return func(c *Client) { c.jobTry = &try }
}

// WithRequestIDs overrides request id generation.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) { c.newID = fn }
}

// NewClient creates a Client for the API at baseURL, authenticating with
// "<tokenType> <token>".
func NewClient(baseURL, tokenType, token string, opts ...Option) *Client {
	if tokenType == "" {
		tokenType = "Bearer"
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: tokenType + " " + token,
		httpClient: &http.Client{Timeout: DefaultClientTimeout},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// describeRequest is the body of a describe call.
type describeRequest struct {
	Project    string `json:"project,omitempty"`
	Details    bool   `json:"details"`
	Properties bool   `json:"properties"`
	Try        *int   `json:"try,omitempty"`
}

// errorResponse is the API error envelope.
type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Fetch describes one object.
func (c *Client) Fetch(ctx context.Context, id ident.ObjectID) (*Response, error) {
	body := describeRequest{Details: true, Properties: true}
	if scope, ok := id.Scope(); ok {
		body.Project = scope.String()
	}
	if id.Class() == ident.ClassJob {
		body.Try = c.jobTry
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, ID: id.String(), Err: err}
	}

	url := fmt.Sprintf("%s/%s/describe", c.baseURL, id.Bare())
	requestID := c.newID()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, ID: id.String(), RequestID: requestID, Err: err}
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("api request",
		"method", req.Method,
		"url", url,
		"request_id", requestID,
		"body", string(data),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts, cancelled contexts and connection failures are all
		// worth another attempt from the caller's point of view.
		return nil, &Error{Kind: ErrTransient, ID: id.String(), RequestID: requestID, Err: fmt.Errorf("API request failed: %w", err)}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: ErrTransient, ID: id.String(), Status: resp.StatusCode, RequestID: requestID, Err: fmt.Errorf("read response body: %w", err)}
	}

	c.logger.Debug("api response",
		"url", url,
		"request_id", requestID,
		"status", resp.StatusCode,
		"bytes", len(payload),
		"elapsed", time.Since(start),
		"body", string(payload),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(id, requestID, resp.StatusCode, payload)
	}
	if !isJSONObject(payload) {
		return nil, &Error{Kind: ErrMalformed, ID: id.String(), Status: resp.StatusCode, RequestID: requestID, Message: "response is not a JSON object"}
	}
	return &Response{Payload: payload, Status: resp.StatusCode, RequestID: requestID}, nil
}

// classifyStatus maps a non-200 response onto an error kind.
func classifyStatus(id ident.ObjectID, requestID string, status int, body []byte) error {
	e := &Error{ID: id.String(), Status: status, RequestID: requestID}

	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Type != "" {
		e.Type = envelope.Error.Type
		e.Message = envelope.Error.Message
	} else {
		e.Message = strings.TrimSpace(string(body))
	}

	switch {
	case status == http.StatusUnauthorized || e.Type == "InvalidAuthentication":
		e.Kind = ErrUnauthorized
	case status == http.StatusNotFound || status == http.StatusForbidden ||
		e.Type == "ResourceNotFound" || e.Type == "PermissionDenied":
		e.Kind = ErrNotFound
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		e.Kind = ErrTransient
	default:
		e.Kind = ErrMalformed
	}
	return e
}

func isJSONObject(data []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return false
	}
	return obj != nil
}

// AsError extracts a gateway Error from err.
func AsError(err error) (*Error, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}
