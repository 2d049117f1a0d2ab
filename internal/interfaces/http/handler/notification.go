package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/salescrm/backend/internal/application/notification"
)

// NotificationHandler handles email and WhatsApp HTTP requests
type NotificationHandler struct {
	BaseHandler
	emailService    *notification.EmailService
	whatsappService *notification.WhatsAppService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(emailService *notification.EmailService, whatsappService *notification.WhatsAppService) *NotificationHandler {
	return &NotificationHandler{
		emailService:    emailService,
		whatsappService: whatsappService,
	}
}

// EmailConfig godoc
// @ID           getEmailConfig
// @Summary      Email configuration status
// @Tags         emails
// @Produce      json
// @Success      200 {object} APIResponse[email.Status]
// @Security     BearerAuth
// @Router       /emails/config [get]
func (h *NotificationHandler) EmailConfig(c *gin.Context) {
	h.Success(c, h.emailService.ConfigStatus())
}

// SendWelcome godoc
// @ID           sendWelcomeEmail
// @Summary      Send a welcome email
// @Tags         emails
// @Accept       json
// @Produce      json
// @Param        request body notification.WelcomeRequest true "Recipient"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /emails/welcome [post]
func (h *NotificationHandler) SendWelcome(c *gin.Context) {
	var req notification.WelcomeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.emailService.SendWelcome(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Correo de bienvenida enviado a " + req.Email})
}

// SendTest godoc
// @ID           sendTestEmail
// @Summary      Send a configuration test email
// @Tags         emails
// @Accept       json
// @Produce      json
// @Param        request body notification.TestEmailRequest true "Recipient"
// @Success      200 {object} APIResponse[MessageData]
// @Security     BearerAuth
// @Router       /emails/test [post]
func (h *NotificationHandler) SendTest(c *gin.Context) {
	var req notification.TestEmailRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.emailService.SendTest(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Correo de prueba enviado a " + req.Email})
}

// SendOrderNotification godoc
// @ID           sendOrderNotificationEmail
// @Summary      Send an order status email
// @Tags         emails
// @Accept       json
// @Produce      json
// @Param        request body notification.OrderNotificationRequest true "Order notification"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /emails/order-notification [post]
func (h *NotificationHandler) SendOrderNotification(c *gin.Context) {
	var req notification.OrderNotificationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.emailService.SendOrderNotification(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Notificación de pedido enviada a " + req.Email})
}

// SendCustom godoc
// @ID           sendCustomEmail
// @Summary      Email a client's primary contact
// @Tags         emails
// @Accept       json
// @Produce      json
// @Param        request body notification.CustomEmailRequest true "Message"
// @Success      200 {object} APIResponse[notification.DeliveryResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /emails/custom [post]
func (h *NotificationHandler) SendCustom(c *gin.Context) {
	var req notification.CustomEmailRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.emailService.SendCustom(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Templates godoc
// @ID           listEmailTemplates
// @Summary      Client email templates
// @Tags         emails
// @Produce      json
// @Success      200 {object} APIResponse[[]notification.TemplateResponse]
// @Security     BearerAuth
// @Router       /emails/templates [get]
func (h *NotificationHandler) Templates(c *gin.Context) {
	h.Success(c, h.emailService.Templates())
}

// RenderTemplate godoc
// @ID           renderEmailTemplate
// @Summary      Render a template for a client
// @Description  Renders seguimiento, cotizacion or agradecimiento. With send=true the email goes to the primary contact.
// @Tags         emails
// @Accept       json
// @Produce      json
// @Param        name path string true "Template" Enums(seguimiento, cotizacion, agradecimiento)
// @Param        request body notification.TemplateRequest true "Template data"
// @Success      200 {object} APIResponse[notification.RenderedTemplate]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /emails/templates/{name} [post]
func (h *NotificationHandler) RenderTemplate(c *gin.Context) {
	var req notification.TemplateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rendered, err := h.emailService.RenderTemplate(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rendered)
}

// SendWhatsApp godoc
// @ID           sendWhatsApp
// @Summary      Send a WhatsApp message to a client
// @Description  The message goes to the mobile of the client's primary contact
// @Tags         whatsapp
// @Accept       json
// @Produce      json
// @Param        request body notification.SendWhatsAppRequest true "Message"
// @Success      200 {object} APIResponse[notification.DeliveryResult]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /whatsapp/send [post]
func (h *NotificationHandler) SendWhatsApp(c *gin.Context) {
	var req notification.SendWhatsAppRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.whatsappService.SendToClient(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
