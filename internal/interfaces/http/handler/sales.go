package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/application/sales"
	"github.com/salescrm/backend/internal/domain/identity"
)

// QuotationHandler handles quotation HTTP requests
type QuotationHandler struct {
	BaseHandler
	quotationService *sales.QuotationService
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(quotationService *sales.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService}
}

// List godoc
// @ID           listQuotations
// @Summary      List quotations
// @Description  Sellers see their own quotations
// @Tags         quotations
// @Produce      json
// @Param        search query string false "Code or client"
// @Param        status query string false "Status" Enums(borrador, enviada, aprobada, rechazada, vencida)
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        seller_id query string false "Seller ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]sales.QuotationResponse]
// @Security     BearerAuth
// @Router       /quotations [get]
func (h *QuotationHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var filter sales.SalesListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	quotations, total, err := h.quotationService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, quotations, total, page, pageSize)
}

// Create godoc
// @ID           createQuotation
// @Summary      Create a draft quotation
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        request body sales.CreateQuotationRequest true "Quotation"
// @Success      201 {object} APIResponse[sales.QuotationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations [post]
func (h *QuotationHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req sales.CreateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := h.quotationService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, q)
}

// GetByID godoc
// @ID           getQuotationById
// @Summary      Get a quotation
// @Tags         quotations
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      200 {object} APIResponse[sales.QuotationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id} [get]
func (h *QuotationHandler) GetByID(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.quotationService.GetByID)
}

// Update godoc
// @ID           updateQuotation
// @Summary      Update a draft quotation
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Param        request body sales.UpdateQuotationRequest true "Quotation"
// @Success      200 {object} APIResponse[sales.QuotationResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id} [put]
func (h *QuotationHandler) Update(c *gin.Context) {
	bodyAction(&h.BaseHandler, c, false, h.quotationService.Update)
}

// Delete godoc
// @ID           deleteQuotation
// @Summary      Delete a draft quotation
// @Tags         quotations
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id} [delete]
func (h *QuotationHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.quotationService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Send godoc
// @ID           sendQuotation
// @Summary      Send a quotation to the client
// @Description  Requires at least one item. Moves the client to Cotizado when its status allows it.
// @Tags         quotations
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      200 {object} APIResponse[sales.QuotationResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id}/send [post]
func (h *QuotationHandler) Send(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.quotationService.Send)
}

// Approve godoc
// @ID           approveQuotation
// @Summary      Approve a sent quotation
// @Description  Creates the order of the quotation and moves the client to Aprobado
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Param        request body sales.ApproveQuotationRequest false "Order details"
// @Success      200 {object} APIResponse[sales.ApprovalResult]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id}/approve [post]
func (h *QuotationHandler) Approve(c *gin.Context) {
	bodyAction(&h.BaseHandler, c, true, h.quotationService.Approve)
}

// Reject godoc
// @ID           rejectQuotation
// @Summary      Reject a quotation
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Param        request body sales.RejectRequest false "Reason"
// @Success      200 {object} APIResponse[sales.QuotationResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id}/reject [post]
func (h *QuotationHandler) Reject(c *gin.Context) {
	bodyAction(&h.BaseHandler, c, true, h.quotationService.Reject)
}

// PDF godoc
// @ID           getQuotationPDF
// @Summary      Quotation PDF
// @Tags         quotations
// @Produce      application/pdf
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      200 {file} file
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id}/pdf [get]
func (h *QuotationHandler) PDF(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	pdf, filename, err := h.quotationService.RenderPDF(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Attachment(c, filename, contentTypePDF)
	c.Data(http.StatusOK, contentTypePDF, pdf)
}

// OrderHandler handles order HTTP requests
type OrderHandler struct {
	BaseHandler
	orderService *sales.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *sales.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// OrderListResponse is a page of orders with the counters per status
type OrderListResponse struct {
	Items []sales.OrderResponse `json:"items"`
	Stats *sales.OrderStats     `json:"stats"`
}

// List godoc
// @ID           listOrders
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        search query string false "Code or client"
// @Param        status query string false "Status" Enums(pendiente, en_proceso, completado, cancelado)
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[OrderListResponse]
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var filter sales.SalesListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	orders, total, stats, err := h.orderService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, OrderListResponse{Items: orders, Stats: stats}, total, page, pageSize)
}

// Create godoc
// @ID           createOrder
// @Summary      Create an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body sales.CreateOrderRequest true "Order"
// @Success      201 {object} APIResponse[sales.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req sales.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.orderService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, o)
}

// GetByID godoc
// @ID           getOrderById
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[sales.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.orderService.GetByID)
}

// Update godoc
// @ID           updateOrder
// @Summary      Update a pending order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body sales.UpdateOrderRequest true "Order"
// @Success      200 {object} APIResponse[sales.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	bodyAction(&h.BaseHandler, c, false, h.orderService.Update)
}

// Process godoc
// @ID           processOrder
// @Summary      Start processing an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[sales.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/process [post]
func (h *OrderHandler) Process(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.orderService.Process)
}

// Complete godoc
// @ID           completeOrder
// @Summary      Complete an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[sales.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.orderService.Complete)
}

// Cancel godoc
// @ID           cancelOrder
// @Summary      Cancel an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body sales.RejectRequest false "Reason"
// @Success      200 {object} APIResponse[sales.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	bodyAction(&h.BaseHandler, c, true, h.orderService.Cancel)
}

// Delete godoc
// @ID           deleteOrder
// @Summary      Delete a pending order
// @Tags         orders
// @Param        id path string true "Order ID" format(uuid)
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// idAction runs an action on the resource named by the id path parameter
func idAction[R any](h *BaseHandler, c *gin.Context,
	action func(ctx context.Context, actor identity.Actor, id uuid.UUID) (R, error)) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := action(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// bodyAction is idAction with a JSON body
func bodyAction[T, R any](h *BaseHandler, c *gin.Context, optional bool,
	action func(ctx context.Context, actor identity.Actor, id uuid.UUID, req T) (R, error)) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req T
	bound := h.BindJSON
	if optional {
		bound = h.BindOptionalJSON
	}
	if !bound(c, &req) {
		return
	}

	result, err := action(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
