package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordblog/blogapi/utils"
)

func newAuthTestRouter(t *testing.T, optional bool) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mw := AuthRequired()
	if optional {
		mw = AuthOptional()
	}
	r.GET("/whoami", mw, func(ctx *gin.Context) {
		id, ok := ctx.Get(ContextUserIDKey)
		if !ok {
			ctx.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	return r
}

func doWhoami(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := newAuthTestRouter(t, false)

	token, err := utils.GenerateToken(7, "jane@example.com", time.Hour)
	require.NoError(t, err)

	w := doWhoami(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestAuthRequiredMissingHeader(t *testing.T) {
	r := newAuthTestRouter(t, false)

	w := doWhoami(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredMalformedHeader(t *testing.T) {
	r := newAuthTestRouter(t, false)

	for _, header := range []string{"Bearer", "Token abc", "Bearer "} {
		w := doWhoami(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthRequiredGarbageToken(t *testing.T) {
	r := newAuthTestRouter(t, false)

	w := doWhoami(r, "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRevokedToken(t *testing.T) {
	r := newAuthTestRouter(t, false)

	token, err := utils.GenerateToken(7, "jane@example.com", time.Hour)
	require.NoError(t, err)
	utils.BlacklistToken(token, time.Now().Add(time.Hour))

	w := doWhoami(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthOptional(t *testing.T) {
	r := newAuthTestRouter(t, true)

	// anonymous passes through
	w := doWhoami(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")

	// a bad token is treated as anonymous, not rejected
	w = doWhoami(r, "Bearer not.a.jwt")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")

	// a valid token resolves the caller
	token, err := utils.GenerateToken(9, "bob@example.com", time.Hour)
	require.NoError(t, err)
	w = doWhoami(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":9`)
}
