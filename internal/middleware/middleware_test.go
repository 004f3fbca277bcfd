package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"grabyourtickets/internal/auth"
	"grabyourtickets/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(tokens *auth.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), RequestID(), CORS())

	r.GET("/open", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestIDFromContext(c.Request.Context()))
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	private := r.Group("/private", Auth(tokens))
	private.GET("/me", func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.ID)
	})
	private.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	r := setupRouter(auth.NewTokenManager("s", time.Hour))

	w := do(r, http.MethodGet, "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	r := setupRouter(auth.NewTokenManager("s", time.Hour))
	w := do(r, http.MethodOptions, "/open", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	r := setupRouter(auth.NewTokenManager("s", time.Hour))
	w := do(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestAuth(t *testing.T) {
	tokens := auth.NewTokenManager("s", time.Hour)
	r := setupRouter(tokens)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/private/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/private/me", "garbage").Code)

	token, err := tokens.Issue(auth.Identity{ID: "u-1", Role: "user"})
	require.NoError(t, err)
	w := do(r, http.MethodGet, "/private/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/private/admin", token).Code)

	adminToken, err := tokens.Issue(auth.Identity{ID: "a-1", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/private/admin", adminToken).Code)
}
