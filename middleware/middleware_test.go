package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfare/middleware"
	"wayfare/utils"
)

var secret = []byte("test-secret")

func sign(t *testing.T, key []byte, userID string, expires time.Time) string {
	t.Helper()
	claims := middleware.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return "Bearer " + s
}

func whoami(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"user": utils.GetUserIDFromRequest(r)})
}

func TestValidateJWT(t *testing.T) {
	auth := middleware.NewAuth(secret)

	claims, err := auth.ValidateJWT(sign(t, secret, "u1", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	_, err = auth.ValidateJWT(sign(t, secret, "u1", time.Now().Add(-time.Hour)))
	assert.Error(t, err, "expired")

	_, err = auth.ValidateJWT(sign(t, []byte("other"), "u1", time.Now().Add(time.Hour)))
	assert.Error(t, err, "wrong key")

	_, err = auth.ValidateJWT("Token abc")
	assert.ErrorIs(t, err, middleware.ErrInvalidToken)

	_, err = middleware.NewAuth(nil).ValidateJWT(sign(t, secret, "u1", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, middleware.ErrInvalidToken, "no secret configured")
}

func TestOptionalAuth(t *testing.T) {
	h := middleware.NewAuth(secret).OptionalAuth(whoami)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":""}`, rec.Body.String())

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", sign(t, secret, "u7", time.Now().Add(time.Hour)))
	h(rec, req, nil)
	assert.JSONEq(t, `{"user":"u7"}`, rec.Body.String())
}

func TestAuthenticate(t *testing.T) {
	h := middleware.NewAuth(secret).Authenticate(whoami)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", sign(t, secret, "u9", time.Now().Add(time.Hour)))
	h(rec, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"u9"}`, rec.Body.String())
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next httprouter.Handle) httprouter.Handle {
			return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
				order = append(order, name)
				next(w, r, ps)
			}
		}
	}
	h := middleware.Chain(tag("outer"), tag("inner"))(func(http.ResponseWriter, *http.Request, httprouter.Params) {
		order = append(order, "handler")
	})
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}
