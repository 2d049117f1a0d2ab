package router

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/salescrm/backend/internal/infrastructure/auth"
	"github.com/salescrm/backend/internal/interfaces/http/handler"
	"github.com/salescrm/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
)

func apiHandlers() Handlers {
	return Handlers{
		Auth:         handler.NewAuthHandler(nil),
		User:         handler.NewUserHandler(nil),
		Client:       handler.NewClientHandler(nil, nil),
		Contact:      handler.NewContactHandler(nil),
		Visit:        handler.NewVisitHandler(nil),
		Quotation:    handler.NewQuotationHandler(nil),
		Order:        handler.NewOrderHandler(nil),
		Product:      handler.NewProductHandler(nil, nil),
		Dashboard:    handler.NewDashboardHandler(nil),
		Notification: handler.NewNotificationHandler(nil, nil),
		System:       handler.NewSystemHandler("crm", "test"),
	}
}

func asRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: "8b7f3c52-8f5e-4a4e-9c59-0d6a1f7c2b11", Role: role})
		c.Next()
	}
}

func TestRegisterAPI_Routes(t *testing.T) {
	r := NewRouter(gin.New())
	RegisterAPI(r, apiHandlers(), nil)

	index := map[string][]string{}
	for _, route := range r.Routes() {
		index[route.Method+" "+route.Path] = route.Roles
	}

	for _, key := range []string{
		"POST /api/v1/auth/login",
		"GET /api/v1/auth/me",
		"GET /api/v1/clients/export.xlsx",
		"POST /api/v1/clients/import",
		"POST /api/v1/contacts/:id/primary",
		"POST /api/v1/visits/planning/submit",
		"PUT /api/v1/visits/:id/comments",
		"GET /api/v1/quotations/:id/pdf",
		"POST /api/v1/orders/:id/process",
		"PUT /api/v1/products/:id/prices",
		"GET /api/v1/products/:id/documents/:docId/download",
		"POST /api/v1/emails/templates/:name",
		"POST /api/v1/whatsapp/send",
		"GET /api/v1/dashboard",
	} {
		assert.Contains(t, index, key)
	}

	assert.Equal(t, managerOnly, index["GET /api/v1/users"])
	assert.Equal(t, managerOnly, index["POST /api/v1/visits/planning/approve"])
	assert.Equal(t, managerOnly, index["POST /api/v1/visits/:id/review"])
	assert.Equal(t, managerOnly, index["POST /api/v1/products"])
	assert.Empty(t, index["GET /api/v1/products"])
	assert.Empty(t, index["POST /api/v1/visits/:id/complete"])
}

func TestRegisterAPI_ManagerGuard(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine).Use(asRole("vendedor"))
	RegisterAPI(r, apiHandlers(), nil)
	r.Setup()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/users"},
		{http.MethodPost, "/api/v1/visits/planning/approve"},
		{http.MethodPost, "/api/v1/dashboard/refresh"},
		{http.MethodDelete, "/api/v1/products/8b7f3c52-8f5e-4a4e-9c59-0d6a1f7c2b11"},
	} {
		w := serve(engine, tc.method, tc.path)
		assert.Equal(t, http.StatusForbidden, w.Code, tc.path)
	}
}

func TestRegisterAPI_LoginLimiter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	limited := func(c *gin.Context) { c.AbortWithStatus(http.StatusTooManyRequests) }
	RegisterAPI(r, apiHandlers(), limited)
	r.Setup()

	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/v1/auth/login").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/v1/auth/refresh").Code)
}
