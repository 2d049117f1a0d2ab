package logger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findEntry(t *testing.T, recorded *observer.ObservedLogs, msg string) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage(msg).All()
	require.Len(t, entries, 1, "expected one %q entry", msg)
	return entries[0]
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/api/v1/visits", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/visits?week=11", nil))

			entry := findEntry(t, recorded, "HTTP Request")
			assert.Equal(t, tt.level, entry.Level)
			fields := entry.ContextMap()
			assert.Equal(t, "week=11", fields["query"])
			assert.Equal(t, "/api/v1/visits", fields["path"])
			assert.Equal(t, int64(tt.status), fields["status"])
		})
	}
}

func TestGinMiddleware_PropagatesRequestAndUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-7")
		c.Set("user_id", "seller-1")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.POST("/api/v1/clients", func(c *gin.Context) {
		assert.Equal(t, "req-7", GetRequestID(c.Request.Context()))
		L(c.Request.Context()).Info("client created")
		c.Status(http.StatusCreated)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/clients", nil))

	inner := findEntry(t, recorded, "client created")
	assert.Equal(t, "req-7", inner.ContextMap()["request_id"])

	outer := findEntry(t, recorded, "HTTP Request")
	assert.Equal(t, "seller-1", outer.ContextMap()["user_id"])
	assert.Equal(t, "req-7", outer.ContextMap()["request_id"])
}

func TestRecovery_WritesErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-panic")
		c.Next()
	})
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) {
		panic("nil planning")
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, "req-panic", body.Error.RequestID)

	entry := findEntry(t, recorded, "Panic recovered")
	assert.Equal(t, "/boom", entry.ContextMap()["path"])
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var withMiddleware, without *zap.Logger
	router := gin.New()
	router.GET("/bare", func(c *gin.Context) {
		without = GetGinLogger(c)
	})
	logged := router.Group("/", GinMiddleware(zap.NewNop()))
	logged.GET("/logged", func(c *gin.Context) {
		withMiddleware = GetGinLogger(c)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bare", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/logged", nil))

	require.NotNil(t, without)
	require.NotNil(t, withMiddleware)
	assert.NotPanics(t, func() { without.Info("noop") })
}
