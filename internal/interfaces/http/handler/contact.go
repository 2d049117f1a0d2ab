package handler

import (
	"bytes"

	"github.com/gin-gonic/gin"
	appclient "github.com/salescrm/backend/internal/application/client"
)

// ContactHandler handles contact HTTP requests
type ContactHandler struct {
	BaseHandler
	contactService *appclient.ContactService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService *appclient.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// List godoc
// @ID           listContacts
// @Summary      List contacts
// @Tags         contacts
// @Produce      json
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        search query string false "Name, email or phone"
// @Param        primary_only query bool false "Only primary contacts"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]appclient.ContactResponse]
// @Security     BearerAuth
// @Router       /contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	var filter appclient.ContactListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	contacts, total, err := h.contactService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, contacts, total, page, pageSize)
}

// Create godoc
// @ID           createContact
// @Summary      Add a contact to a client
// @Description  The first contact of a client becomes its primary contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        request body appclient.CreateContactRequest true "Contact"
// @Success      201 {object} APIResponse[appclient.ContactResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contacts [post]
func (h *ContactHandler) Create(c *gin.Context) {
	var req appclient.CreateContactRequest
	if !h.BindJSON(c, &req) {
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contact)
}

// GetByID godoc
// @ID           getContactById
// @Summary      Get a contact
// @Tags         contacts
// @Produce      json
// @Param        id path string true "Contact ID" format(uuid)
// @Success      200 {object} APIResponse[appclient.ContactResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/{id} [get]
func (h *ContactHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	contact, err := h.contactService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// Update godoc
// @ID           updateContact
// @Summary      Update a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contact ID" format(uuid)
// @Param        request body appclient.UpdateContactRequest true "Contact"
// @Success      200 {object} APIResponse[appclient.ContactResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/{id} [put]
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req appclient.UpdateContactRequest
	if !h.BindJSON(c, &req) {
		return
	}

	contact, err := h.contactService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// MakePrimary godoc
// @ID           makeContactPrimary
// @Summary      Make a contact the primary contact of its client
// @Tags         contacts
// @Produce      json
// @Param        id path string true "Contact ID" format(uuid)
// @Success      200 {object} APIResponse[appclient.ContactResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/{id}/primary [post]
func (h *ContactHandler) MakePrimary(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	contact, err := h.contactService.MakePrimary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// Delete godoc
// @ID           deleteContact
// @Summary      Delete a contact
// @Description  Deleting the primary contact promotes another one. The last contact of a client cannot be deleted.
// @Tags         contacts
// @Param        id path string true "Contact ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.contactService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ExportCSV godoc
// @ID           exportContactsCSV
// @Summary      Export contacts as CSV
// @Tags         contacts
// @Produce      text/csv
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        search query string false "Search text"
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /contacts/export [get]
func (h *ContactHandler) ExportCSV(c *gin.Context) {
	var filter appclient.ContactListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	var buf bytes.Buffer
	if err := h.contactService.ExportCSV(c.Request.Context(), filter, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SendFile(c, exportName("contactos", "csv"), contentTypeCSV, &buf)
}
