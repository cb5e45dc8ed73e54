// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/impulsa/internal/platform/apperr"
	"github.com/taibuivan/impulsa/internal/platform/querycache"
	"github.com/taibuivan/impulsa/internal/platform/respond"
)

/*
TestError verifies the status and envelope for each error family.
*/
func TestError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"Aborted fetch", querycache.ErrAborted, http.StatusNoContent, ""},
		{"Wrapped abort", fmt.Errorf("join: %w", querycache.ErrAborted), http.StatusNoContent, ""},
		{"Upstream failure", apperr.Upstream("No se pudieron cargar las postulaciones", errors.New("503")), http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"Pending mutation", apperr.Conflict("Deletion already pending"), http.StatusConflict, "CONFLICT"},
		{"Unknown error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.code == "" {
				assert.Zero(t, recorder.Body.Len())
				return
			}

			var envelope respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, tt.code, envelope.Code)
		})
	}
}

/*
TestError_HidesCause verifies that the cause of a 5xx never reaches the client.
*/
func TestError_HidesCause(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), apperr.Upstream("Fallo", errors.New("secret upstream body")))

	assert.NotContains(t, recorder.Body.String(), "secret upstream body")
	assert.Contains(t, recorder.Body.String(), "Fallo")
}
