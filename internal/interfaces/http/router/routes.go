package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/interfaces/http/handler"
	"github.com/salescrm/backend/internal/interfaces/http/middleware"
)

// Handlers groups the HTTP handlers mounted under the API prefix
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Client       *handler.ClientHandler
	Contact      *handler.ContactHandler
	Visit        *handler.VisitHandler
	Quotation    *handler.QuotationHandler
	Order        *handler.OrderHandler
	Product      *handler.ProductHandler
	Dashboard    *handler.DashboardHandler
	Notification *handler.NotificationHandler
	System       *handler.SystemHandler
}

var managerOnly = []string{string(identity.RoleManager)}

// RegisterAPI declares every CRM route. loginLimiter throttles the public
// credential endpoints and may be nil.
func RegisterAPI(r *Router, h Handlers, loginLimiter gin.HandlerFunc) {
	manager := middleware.RequireRole(identity.RoleManager)

	credentials := []gin.HandlerFunc{}
	if loginLimiter != nil {
		credentials = append(credentials, loginLimiter)
	}
	with := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, credentials...), fn)
	}

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", with(h.Auth.Login)...)
	authRoutes.POST("/demo-login", with(h.Auth.DemoLogin)...)
	authRoutes.POST("/refresh", with(h.Auth.RefreshToken)...)
	authRoutes.POST("/logout", h.Auth.Logout)
	authRoutes.GET("/me", h.Auth.GetCurrentUser)
	authRoutes.POST("/switch-role", h.Auth.SwitchRole)

	userRoutes := NewDomainGroup("users", "/users").Restrict(manager, managerOnly...)
	userRoutes.GET("", h.User.List)
	userRoutes.POST("", h.User.Create)
	userRoutes.GET("/:id", h.User.GetByID)
	userRoutes.PUT("/:id", h.User.Update)
	userRoutes.POST("/:id/deactivate", h.User.Deactivate)
	userRoutes.POST("/:id/activate", h.User.Activate)

	clientRoutes := NewDomainGroup("clients", "/clients")
	clientRoutes.GET("", h.Client.List)
	clientRoutes.POST("", h.Client.Create)
	clientRoutes.GET("/options", h.Client.Options)
	clientRoutes.GET("/export", h.Client.ExportCSV)
	clientRoutes.GET("/export.xlsx", h.Client.ExportXLSX)
	clientRoutes.GET("/import/template", h.Client.ImportTemplate)
	clientRoutes.POST("/import", h.Client.Import)
	clientRoutes.GET("/:id", h.Client.GetByID)
	clientRoutes.PUT("/:id", h.Client.Update)
	clientRoutes.DELETE("/:id", h.Client.Delete)
	clientRoutes.GET("/:id/history", h.Client.History)
	clientRoutes.GET("/:id/contacts", h.Client.Contacts)

	contactRoutes := NewDomainGroup("contacts", "/contacts")
	contactRoutes.GET("", h.Contact.List)
	contactRoutes.POST("", h.Contact.Create)
	contactRoutes.GET("/export", h.Contact.ExportCSV)
	contactRoutes.GET("/:id", h.Contact.GetByID)
	contactRoutes.PUT("/:id", h.Contact.Update)
	contactRoutes.DELETE("/:id", h.Contact.Delete)
	contactRoutes.POST("/:id/primary", h.Contact.MakePrimary)

	visitRoutes := NewDomainGroup("visits", "/visits")
	visitRoutes.GET("", h.Visit.List)
	visitRoutes.POST("", h.Visit.Create)
	visitRoutes.GET("/export.xlsx", h.Visit.ExportXLSX)
	visitRoutes.POST("/unplanned", h.Visit.CreateUnplanned)
	visitRoutes.GET("/planning", h.Visit.Planning)
	visitRoutes.POST("/planning/save", h.Visit.SavePlanning)
	visitRoutes.POST("/planning/submit", h.Visit.SubmitPlanning)
	visitRoutes.POST("/planning/revert", h.Visit.RevertPlanning)
	visitRoutes.Guarded(http.MethodPost, "/planning/approve", manager, managerOnly, h.Visit.ApprovePlanning)
	visitRoutes.GET("/:id", h.Visit.GetByID)
	visitRoutes.PUT("/:id", h.Visit.Update)
	visitRoutes.DELETE("/:id", h.Visit.Delete)
	visitRoutes.Guarded(http.MethodPost, "/:id/review", manager, managerOnly, h.Visit.Review)
	visitRoutes.POST("/:id/complete", h.Visit.Complete)
	visitRoutes.POST("/:id/realize", h.Visit.Realize)
	visitRoutes.POST("/:id/cancel", h.Visit.Cancel)
	visitRoutes.POST("/:id/reschedule", h.Visit.Reschedule)
	visitRoutes.PUT("/:id/comments", h.Visit.UpdateComments)

	quotationRoutes := NewDomainGroup("quotations", "/quotations")
	quotationRoutes.GET("", h.Quotation.List)
	quotationRoutes.POST("", h.Quotation.Create)
	quotationRoutes.GET("/:id", h.Quotation.GetByID)
	quotationRoutes.PUT("/:id", h.Quotation.Update)
	quotationRoutes.DELETE("/:id", h.Quotation.Delete)
	quotationRoutes.POST("/:id/send", h.Quotation.Send)
	quotationRoutes.POST("/:id/approve", h.Quotation.Approve)
	quotationRoutes.POST("/:id/reject", h.Quotation.Reject)
	quotationRoutes.GET("/:id/pdf", h.Quotation.PDF)

	orderRoutes := NewDomainGroup("orders", "/orders")
	orderRoutes.GET("", h.Order.List)
	orderRoutes.POST("", h.Order.Create)
	orderRoutes.GET("/:id", h.Order.GetByID)
	orderRoutes.PUT("/:id", h.Order.Update)
	orderRoutes.DELETE("/:id", h.Order.Delete)
	orderRoutes.POST("/:id/process", h.Order.Process)
	orderRoutes.POST("/:id/complete", h.Order.Complete)
	orderRoutes.POST("/:id/cancel", h.Order.Cancel)

	// Sellers browse the catalog; managers maintain it
	productRoutes := NewDomainGroup("products", "/products")
	productRoutes.GET("", h.Product.List)
	productRoutes.Guarded(http.MethodPost, "", manager, managerOnly, h.Product.Create)
	productRoutes.GET("/:id", h.Product.GetByID)
	productRoutes.Guarded(http.MethodPut, "/:id", manager, managerOnly, h.Product.Update)
	productRoutes.Guarded(http.MethodDelete, "/:id", manager, managerOnly, h.Product.Delete)
	productRoutes.Guarded(http.MethodPut, "/:id/prices", manager, managerOnly, h.Product.SetChannelPrice)
	productRoutes.Guarded(http.MethodPost, "/:id/documents/upload-url", manager, managerOnly, h.Product.DocumentUploadURL)
	productRoutes.Guarded(http.MethodPost, "/:id/documents", manager, managerOnly, h.Product.RegisterDocument)
	productRoutes.GET("/:id/documents/:docId/download", h.Product.DocumentDownloadURL)
	productRoutes.Guarded(http.MethodDelete, "/:id/documents/:docId", manager, managerOnly, h.Product.DeleteDocument)

	channelRoutes := NewDomainGroup("channels", "/channels")
	channelRoutes.GET("", h.Product.ListChannels)
	channelRoutes.Guarded(http.MethodPost, "", manager, managerOnly, h.Product.CreateChannel)

	dashboardRoutes := NewDomainGroup("dashboard", "/dashboard")
	dashboardRoutes.GET("", h.Dashboard.Get)
	dashboardRoutes.Guarded(http.MethodPost, "/refresh", manager, managerOnly, h.Dashboard.Refresh)

	emailRoutes := NewDomainGroup("emails", "/emails")
	emailRoutes.GET("/config", h.Notification.EmailConfig)
	emailRoutes.Guarded(http.MethodPost, "/welcome", manager, managerOnly, h.Notification.SendWelcome)
	emailRoutes.POST("/test", h.Notification.SendTest)
	emailRoutes.POST("/order-notification", h.Notification.SendOrderNotification)
	emailRoutes.POST("/custom", h.Notification.SendCustom)
	emailRoutes.GET("/templates", h.Notification.Templates)
	emailRoutes.POST("/templates/:name", h.Notification.RenderTemplate)

	whatsappRoutes := NewDomainGroup("whatsapp", "/whatsapp")
	whatsappRoutes.POST("/send", h.Notification.SendWhatsApp)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo)
	systemRoutes.GET("/health", h.System.Health)

	r.Register(authRoutes).
		Register(userRoutes).
		Register(clientRoutes).
		Register(contactRoutes).
		Register(visitRoutes).
		Register(quotationRoutes).
		Register(orderRoutes).
		Register(productRoutes).
		Register(channelRoutes).
		Register(dashboardRoutes).
		Register(emailRoutes).
		Register(whatsappRoutes).
		Register(systemRoutes)
}
