package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func setupRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/echo", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id")})
	})
	r.POST("/echo", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

// ============================================================================
// RequestID Tests
// ============================================================================

func TestRequestID_Propagates(t *testing.T) {
	r := setupRouter(RequestID())

	req, _ := http.NewRequest("GET", "/echo", nil)
	req.Header.Set(headerRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(headerRequestID))
	assert.JSONEq(t, `{"request_id":"req-123"}`, w.Body.String())
}

func TestRequestID_Generates(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "too long", header: strings.Repeat("x", maxRequestIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(RequestID())

			req, _ := http.NewRequest("GET", "/echo", nil)
			if tt.header != "" {
				req.Header.Set(headerRequestID, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			_, err := uuid.Parse(w.Header().Get(headerRequestID))
			assert.NoError(t, err)
		})
	}
}

// ============================================================================
// RequireJSON Tests
// ============================================================================

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		accept      string
		expected    int
	}{
		{name: "json post", method: "POST", contentType: "application/json", expected: http.StatusOK},
		{name: "json post with charset", method: "POST", contentType: "application/json; charset=utf-8", expected: http.StatusOK},
		{name: "form post", method: "POST", contentType: "application/x-www-form-urlencoded", expected: http.StatusUnsupportedMediaType},
		{name: "no content type", method: "POST", expected: http.StatusUnsupportedMediaType},
		{name: "html accept", method: "POST", contentType: "application/json", accept: "text/html", expected: http.StatusNotAcceptable},
		{name: "mixed accept", method: "POST", contentType: "application/json", accept: "text/html, application/json;q=0.9", expected: http.StatusOK},
		{name: "get without content type", method: "GET", expected: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(RequireJSON())

			req, _ := http.NewRequest(tt.method, "/echo", strings.NewReader(`{}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

// ============================================================================
// Recovery Tests
// ============================================================================

func TestRecovery(t *testing.T) {
	r := setupRouter(RequestID(), Logging(), Recovery())

	req, _ := http.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
