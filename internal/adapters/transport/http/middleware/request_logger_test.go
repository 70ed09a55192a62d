package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("Cookie", "session=abc")
	h.Set("Content-Type", "application/json")

	out := RedactHeaders(h)
	require.Equal(t, "[redacted]", out.Get("Authorization"))
	require.Equal(t, "[redacted]", out.Get("Cookie"))
	require.Equal(t, "application/json", out.Get("Content-Type"))
	require.Equal(t, "Bearer secret", h.Get("Authorization"))
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.AbortWithStatus(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Authorization", "Bearer secret")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.FilterMessage("request completed").Len())
	for _, e := range logs.All() {
		for _, f := range e.Context {
			require.NotContains(t, f.String, "secret")
		}
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Equal(t, 1, logs.FilterMessage("handler error").Len())
}
