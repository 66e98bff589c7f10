// Package remote is the HTTP/JSON transport to the move service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chessbot/internal/core"

	"github.com/rs/zerolog"
)

const (
	DefaultTimeout = 30 * time.Second
	movePath       = "/api/move"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
	log        zerolog.Logger
}

func New(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log: log.With().Str("component", "remote").Logger(),
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the move service base URL
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

// logger shows the debug dumps while Verbose is set, whatever level the
// injected logger was built with
func (c *Client) logger() zerolog.Logger {
	if c.Verbose {
		return c.log.Level(zerolog.DebugLevel)
	}
	return c.log
}

// doRequest sends body as JSON and decodes a 2xx reply into result. Any other
// status, and any network failure, comes back as *core.TransportError.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	url := c.BaseURL + path
	log := c.logger()

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
		if c.Verbose {
			log.Debug().Str("method", method).Str("path", path).RawJSON("body", jsonData).Msg("request")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return &core.TransportError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return &core.TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &core.TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("response")
	if c.Verbose && len(respBody) > 0 && json.Valid(respBody) {
		log.Debug().RawJSON("body", respBody).Msg("response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &core.TransportError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &core.TransportError{
				StatusCode: resp.StatusCode,
				Message:    "malformed response body",
				Err:        err,
			}
		}
	}

	return nil
}

// errorMessage pulls a readable message from an error body. Both the reference
// server's ErrorResponse and the flask-style {"error","message"} bodies decode.
func errorMessage(body []byte) string {
	var errResp core.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return strings.TrimSpace(string(body))
	}
	switch {
	case errResp.Message != "" && errResp.Error != "":
		return errResp.Error + ": " + errResp.Message
	case errResp.Details != "" && errResp.Error != "":
		return errResp.Error + ": " + errResp.Details
	case errResp.Error != "":
		return errResp.Error
	default:
		return errResp.Message
	}
}

// API Methods

// RequestMove submits a move snapshot and returns the service's reply
func (c *Client) RequestMove(ctx context.Context, req *core.MoveRequest) (*core.MoveResponse, error) {
	var resp core.MoveResponse
	if err := c.doRequest(ctx, http.MethodPost, movePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Health(ctx context.Context) (*core.HealthResponse, error) {
	var resp core.HealthResponse
	err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

func (c *Client) Status(ctx context.Context) (*core.StatusResponse, error) {
	var resp core.StatusResponse
	err := c.doRequest(ctx, http.MethodGet, "/api/status", nil, &resp)
	return &resp, err
}

func (c *Client) Reset(ctx context.Context) (*core.ResetResponse, error) {
	var resp core.ResetResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/reset", struct{}{}, &resp)
	return &resp, err
}
