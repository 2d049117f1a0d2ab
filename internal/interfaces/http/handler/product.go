package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/salescrm/backend/internal/application/catalog"
)

// ProductHandler handles product, channel and product document HTTP requests
type ProductHandler struct {
	BaseHandler
	productService  *catalog.ProductService
	documentService *catalog.DocumentService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalog.ProductService, documentService *catalog.DocumentService) *ProductHandler {
	return &ProductHandler{
		productService:  productService,
		documentService: documentService,
	}
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        search query string false "Name or code"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]catalog.ProductResponse]
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalog.ProductListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, products, total, page, pageSize)
}

// Create godoc
// @ID           createProduct
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalog.ProductRequest true "Product"
// @Success      201 {object} APIResponse[catalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalog.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID godoc
// @ID           getProductById
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Update godoc
// @ID           updateProduct
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalog.ProductRequest true "Product"
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req catalog.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @ID           deleteProduct
// @Summary      Delete a product
// @Description  Stored documents of the product are removed afterwards
// @Tags         products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetChannelPrice godoc
// @ID           setProductChannelPrice
// @Summary      Set the price of a product in a channel
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalog.ChannelPriceRequest true "Channel price"
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/prices [put]
func (h *ProductHandler) SetChannelPrice(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req catalog.ChannelPriceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.SetChannelPrice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListChannels godoc
// @ID           listChannels
// @Summary      List sales channels
// @Tags         products
// @Produce      json
// @Success      200 {object} APIResponse[[]catalog.ChannelResponse]
// @Security     BearerAuth
// @Router       /channels [get]
func (h *ProductHandler) ListChannels(c *gin.Context) {
	channels, err := h.productService.ListChannels(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, channels)
}

// CreateChannel godoc
// @ID           createChannel
// @Summary      Create a sales channel
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateChannelRequest true "Channel"
// @Success      201 {object} APIResponse[catalog.ChannelResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /channels [post]
func (h *ProductHandler) CreateChannel(c *gin.Context) {
	var req catalog.CreateChannelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	channel, err := h.productService.CreateChannel(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, channel)
}

// DocumentUploadURL godoc
// @ID           createProductDocumentUploadURL
// @Summary      Presigned upload URL for a product document
// @Description  The client uploads the file with PUT and then registers it
// @Tags         product-documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalog.UploadURLRequest true "File"
// @Success      200 {object} APIResponse[catalog.UploadURLResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/documents/upload-url [post]
func (h *ProductHandler) DocumentUploadURL(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req catalog.UploadURLRequest
	if !h.BindJSON(c, &req) {
		return
	}

	upload, err := h.documentService.UploadURL(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// RegisterDocument godoc
// @ID           registerProductDocument
// @Summary      Register an uploaded product document
// @Tags         product-documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalog.RegisterDocumentRequest true "Uploaded object"
// @Success      201 {object} APIResponse[catalog.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/documents [post]
func (h *ProductHandler) RegisterDocument(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req catalog.RegisterDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.documentService.Register(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// DocumentDownloadURL godoc
// @ID           getProductDocumentDownloadURL
// @Summary      Presigned download URL for a product document
// @Tags         product-documents
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        docId path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[catalog.DownloadURLResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/documents/{docId}/download [get]
func (h *ProductHandler) DocumentDownloadURL(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	docID, ok := h.ParamID(c, "docId")
	if !ok {
		return
	}

	download, err := h.documentService.DownloadURL(c.Request.Context(), id, docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, download)
}

// DeleteDocument godoc
// @ID           deleteProductDocument
// @Summary      Delete a product document
// @Description  Removes the document and its stored object
// @Tags         product-documents
// @Param        id path string true "Product ID" format(uuid)
// @Param        docId path string true "Document ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/documents/{docId} [delete]
func (h *ProductHandler) DeleteDocument(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	docID, ok := h.ParamID(c, "docId")
	if !ok {
		return
	}
	if err := h.documentService.Delete(c.Request.Context(), id, docID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
