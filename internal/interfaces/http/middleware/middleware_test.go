package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/infrastructure/auth"
	"github.com/salescrm/backend/internal/infrastructure/config"
	"github.com/salescrm/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "salescrm-test",
	})
}

func issue(t *testing.T, svc *auth.JWTService, role identity.Role) (*auth.TokenPair, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.Subject{UserID: id, Email: "ana@crm.pe", Name: "Ana Gerente", Role: string(role)})
	require.NoError(t, err)
	return pair, id
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func protectedEngine(cfg JWTMiddlewareConfig, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), JWTAuthMiddlewareWithConfig(cfg))
	handlers := append(extra, func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID.String(), "role": string(actor.Role)})
	})
	r.GET("/api/v1/clients", handlers...)
	r.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newJWTService()
	pair, userID := issue(t, svc, identity.RoleManager)
	r := protectedEngine(DefaultJWTConfig(svc))

	t.Run("valid token exposes the actor", func(t *testing.T) {
		w := get(r, "/api/v1/clients", pair.AccessToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"`+userID.String()+`","role":"gerente"}`, w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := get(r, "/api/v1/clients", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, decode(t, w).Error.Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		w := get(r, "/api/v1/clients", pair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, decode(t, w).Error.Code)
	})

	t.Run("skip path needs no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	svc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  -time.Minute,
		RefreshTokenExpiration: time.Hour,
	})
	pair, _ := issue(t, svc, identity.RoleSeller)

	w := get(protectedEngine(DefaultJWTConfig(svc)), "/api/v1/clients", pair.AccessToken)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenExpired, decode(t, w).Error.Code)
}

func TestJWTAuthMiddleware_Blacklist(t *testing.T) {
	svc := newJWTService()
	blacklist := auth.NewInMemoryTokenBlacklist()
	cfg := DefaultJWTConfig(svc)
	cfg.TokenBlacklist = blacklist
	r := protectedEngine(cfg)

	t.Run("revoked jti", func(t *testing.T) {
		pair, _ := issue(t, svc, identity.RoleSeller)
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.Revoke(context.Background(), claims.ID, time.Minute))

		w := get(r, "/api/v1/clients", pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenRevoked, decode(t, w).Error.Code)
	})

	t.Run("revoked user", func(t *testing.T) {
		pair, userID := issue(t, svc, identity.RoleSeller)
		require.NoError(t, blacklist.RevokeUser(context.Background(), userID.String(), time.Hour))

		w := get(r, "/api/v1/clients", pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	svc := newJWTService()
	r := protectedEngine(DefaultJWTConfig(svc), RequireRole(identity.RoleManager))

	manager, _ := issue(t, svc, identity.RoleManager)
	seller, _ := issue(t, svc, identity.RoleSeller)

	assert.Equal(t, http.StatusOK, get(r, "/api/v1/clients", manager.AccessToken).Code)

	w := get(r, "/api/v1/clients", seller.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestRequireRole_WithoutClaims(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRole(identity.RoleManager), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, get(r, "/x", "").Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDContextKey)) })

	w := get(r, "/x", "")
	assert.Len(t, w.Body.String(), 32)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-abc", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", MaxRequestIDLength+1))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), 32)
}

func TestCORSWithConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://crm.example.pe"}
	r := gin.New()
	r.Use(CORSWithConfig(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(method, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/x", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodGet, "https://crm.example.pe")
	assert.Equal(t, "https://crm.example.pe", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = send(http.MethodGet, "https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(http.MethodOptions, "https://crm.example.pe")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestSecureWithConfig(t *testing.T) {
	cfg := DefaultSecurityConfig()
	cfg.HSTSEnabled = true
	r := gin.New()
	r.Use(SecureWithConfig(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/swagger/index.html", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/x", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=31536000")

	w = get(r, "/swagger/index.html", "")
	assert.Empty(t, w.Header().Get("Content-Security-Policy"))
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	r.GET("/x", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		if !ok || time.Until(deadline) > 50*time.Millisecond {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, get(r, "/x", "").Code)
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Stop()
	now := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	r := gin.New()
	r.Use(RateLimit(limiter))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/x", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, get(r, "/x", "").Code)

	w = get(r, "/x", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, dto.ErrCodeRateLimited, decode(t, w).Error.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, get(r, "/x", "").Code)
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(10))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("a", 11)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("small"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSwaggerGate(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		r := gin.New()
		r.GET("/swagger/*any", SwaggerGate(enabled), func(c *gin.Context) { c.Status(http.StatusOK) })

		w := get(r, "/swagger/index.html", "")
		if enabled {
			assert.Equal(t, http.StatusOK, w.Code)
		} else {
			assert.Equal(t, http.StatusNotFound, w.Code)
		}
	}
}

func TestSpanEnricher_NoSpan(t *testing.T) {
	r := gin.New()
	r.Use(Tracing("salescrm-test", false), SpanEnricher())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	assert.Equal(t, http.StatusInternalServerError, get(r, "/x", "").Code)
}
