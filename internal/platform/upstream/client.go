// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package upstream is the authenticated fetch capability over the platform API.

Every call forwards the caller's bearer token (see [ctxutil.WithAccessToken]),
waits on a shared token bucket so that fan-outs cannot flood the platform,
decodes JSON responses and turns non-2xx answers into [*Error].

No per-call timeout is applied: calls live as long as the inbound request
context, which is what aborts them when the user navigates away.
*/
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/impulsa/internal/platform/constants"
	"github.com/taibuivan/impulsa/internal/platform/ctxutil"
	"github.com/taibuivan/impulsa/internal/platform/metrics"
)

// Error wraps non-2xx responses.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream: %s %s: status=%d body=%s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 answer of the platform API.
func IsNotFound(err error) bool {
	var upstreamErr *Error
	return errors.As(err, &upstreamErr) && upstreamErr.StatusCode == http.StatusNotFound
}

// Options configures a [Client].
type Options struct {
	BaseURL    string
	RPS        float64
	Burst      int
	HTTPClient *http.Client
}

// Client is a minimal platform API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client. A non-positive RPS disables throttling.
func NewClient(options Options) *Client {
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	limit := rate.Inf
	if options.RPS > 0 {
		limit = rate.Limit(options.RPS)
	}
	burst := options.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:    strings.TrimRight(options.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
	}
}

// Get decodes the JSON answer of GET path?query into out.
func (client *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return client.do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the answer into out (which may be nil).
func (client *Client) Post(ctx context.Context, path string, body any, out any) error {
	return client.do(ctx, http.MethodPost, path, body, out)
}

// Delete issues DELETE path and discards the answer.
func (client *Client) Delete(ctx context.Context, path string) error {
	return client.do(ctx, http.MethodDelete, path, nil, nil)
}

// Path joins escaped segments into a relative API path.
func Path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	return strings.Join(escaped, "/")
}

func (client *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if err := client.limiter.Wait(ctx); err != nil {
		return err
	}

	var buffer bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buffer).Encode(body); err != nil {
			return fmt.Errorf("upstream: encode %s %s: %w", method, path, err)
		}
	}

	endpoint := client.baseURL + "/" + strings.TrimLeft(path, "/")
	request, err := http.NewRequestWithContext(ctx, method, endpoint, &buffer)
	if err != nil {
		return err
	}

	request.Header.Set("Accept", constants.ContentTypeJSON)
	request.Header.Set("User-Agent", constants.DefaultUpstreamAgent)
	if body != nil {
		request.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	if token := ctxutil.GetAccessToken(ctx); token != "" {
		request.Header.Set(constants.HeaderAuthorization, constants.AuthorizationPrefix+token)
	}
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		request.Header.Set(constants.HeaderXRequestID, requestID)
	}

	startedAt := time.Now()
	response, err := client.httpClient.Do(request)
	if err != nil {
		metrics.ObserveUpstream(method, 0, time.Since(startedAt))
		return err
	}
	defer response.Body.Close()
	metrics.ObserveUpstream(method, response.StatusCode, time.Since(startedAt))

	if response.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		return &Error{Method: method, Path: path, StatusCode: response.StatusCode, Body: string(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("upstream: decode %s %s: %w", method, path, err)
	}
	return nil
}
