package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wetmill-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storageBody struct {
	Name  string `json:"name" validate:"required,max=5"`
	Count int    `json:"count" validate:"gte=0"`
}

func decodeBody(body string) (*httptest.ResponseRecorder, storageBody, bool) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dst storageBody
	ok := Decode(w, r, &dst)
	return w, dst, ok
}

func TestDecodeAcceptsValidBody(t *testing.T) {
	_, dst, ok := decodeBody(`{"name":"shelf","count":2}`)
	require.True(t, ok)
	assert.Equal(t, "shelf", dst.Name)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	w, _, ok := decodeBody(`{"name":`)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Error)
	assert.Equal(t, "invalid request body", body.Message)
}

func TestDecodeReportsJSONFieldNames(t *testing.T) {
	w, _, ok := decodeBody(`{"name":"","count":-1}`)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "required", body.Fields["storageBody.name"])
	assert.Equal(t, "gte", body.Fields["storageBody.count"])
}

func TestErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.NotFound("batch %s not found", "25MUS1303A"), http.StatusNotFound, "batch 25MUS1303A not found"},
		{apperr.Conflict("taken"), http.StatusConflict, "taken"},
		{apperr.Forbidden("no"), http.StatusForbidden, "no"},
		{apperr.Unauthorized("who"), http.StatusUnauthorized, "who"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		Error(w, httptest.NewRequest(http.MethodGet, "/api/x", nil), tc.err)

		assert.Equal(t, tc.status, w.Code)
		var body errorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.msg, body.Message)
	}
}
