// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/impulsa/internal/platform/ctxutil"
	"github.com/taibuivan/impulsa/internal/platform/upstream"
)

/*
TestClient_ForwardsTokenAndDecodes verifies the authenticated GET round-trip.
*/
func TestClient_ForwardsTokenAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer secret", request.Header.Get("Authorization"))
		assert.Equal(t, "/v1/initiatives", request.URL.Path)
		assert.Equal(t, "2", request.URL.Query().Get("page"))
		_ = json.NewEncoder(writer).Encode(map[string]int{"number": 2})
	}))
	defer server.Close()

	client := upstream.NewClient(upstream.Options{BaseURL: server.URL + "/v1/"})
	ctx := ctxutil.WithAccessToken(context.Background(), "secret")

	var out struct {
		Number int `json:"number"`
	}
	err := client.Get(ctx, "initiatives", url.Values{"page": {"2"}}, &out)

	require.NoError(t, err)
	assert.Equal(t, 2, out.Number)
}

/*
TestClient_PostEncodesBody verifies JSON request bodies.
*/
func TestClient_PostEncodesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
		assert.Equal(t, float64(5), body["applicationId"])
		assert.Equal(t, true, body["accept"])
		writer.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := upstream.NewClient(upstream.Options{BaseURL: server.URL})
	err := client.Post(context.Background(), "applications/accept", map[string]any{"applicationId": 5, "accept": true}, nil)

	assert.NoError(t, err)
}

/*
TestClient_NonSuccessStatus verifies the error mapping.
*/
func TestClient_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "missing", http.StatusNotFound)
	}))
	defer server.Close()

	client := upstream.NewClient(upstream.Options{BaseURL: server.URL})
	err := client.Delete(context.Background(), upstream.Path("initiatives", "9"))

	var upstreamErr *upstream.Error
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusNotFound, upstreamErr.StatusCode)
	assert.Equal(t, "initiatives/9", upstreamErr.Path)
	assert.True(t, upstream.IsNotFound(err))
}

/*
TestClient_CancelledContext verifies that a cancelled caller never reaches the server.
*/
func TestClient_CancelledContext(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits++ }))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := upstream.NewClient(upstream.Options{BaseURL: server.URL, RPS: 1, Burst: 1}).Get(ctx, "x", nil, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, hits)
}

func TestPath_EscapesSegments(t *testing.T) {
	assert.Equal(t, "applications/initiative/a%2Fb", upstream.Path("applications", "initiative", "a/b"))
}
