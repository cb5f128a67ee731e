package utils_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfare/globals"
	"wayfare/utils"
)

func TestRespondWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	utils.RespondWithError(rec, http.StatusBadRequest, "bad dates")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bad dates", body["error"])
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Nights int `json:"nights"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nights":3}`))
	require.NoError(t, utils.DecodeJSON(r, &v, 1<<10))
	assert.Equal(t, 3, v.Nights)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nightz":3}`))
	assert.Error(t, utils.DecodeJSON(r, &v, 1<<10), "unknown field")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nights":3}`))
	assert.Error(t, utils.DecodeJSON(r, &v, 4), "body too large")
}

func TestGetUserIDFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, utils.GetUserIDFromRequest(r))

	r = r.WithContext(context.WithValue(r.Context(), globals.UserIDKey, "u-42"))
	assert.Equal(t, "u-42", utils.GetUserIDFromRequest(r))
}

func TestQueryLimit(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	assert.Equal(t, 100, utils.QueryLimit(r, 20, 100))
	r = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	assert.Equal(t, 20, utils.QueryLimit(r, 20, 100))
	r = httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	assert.Equal(t, 5, utils.QueryLimit(r, 20, 100))
}

func TestGetUUID(t *testing.T) {
	_, err := uuid.Parse(utils.GetUUID())
	assert.NoError(t, err)
}
