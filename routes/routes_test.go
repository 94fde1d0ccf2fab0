package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"forkful/handlers"
	"forkful/websocket"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	hub := websocket.NewHub()
	h := handlers.New(nil, hub, handlers.Config{JWTSecret: "test"})
	return Setup(h, hub, "test")
}

func TestHealth(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestMutationsRequireAuth(t *testing.T) {
	router := newTestRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/posts"},
		{http.MethodPost, "/api/posts/abc/upvote"},
		{http.MethodPost, "/api/posts/abc/comment"},
		{http.MethodDelete, "/api/posts/abc"},
		{http.MethodPost, "/api/recipes"},
		{http.MethodDelete, "/api/recipes/abc"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodGet, "/api/recipes/user"},
	}

	for _, p := range paths {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}
}

func TestUnknownAPIRouteReturnsJSON404(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/does-not-exist", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Endpoint not found")
}
