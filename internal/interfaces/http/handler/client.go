package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	appclient "github.com/salescrm/backend/internal/application/client"
	"github.com/salescrm/backend/internal/interfaces/http/dto"
)

// MaxImportFileSize limits the size of an uploaded client CSV
const MaxImportFileSize = 5 << 20

// ClientHandler handles client HTTP requests
type ClientHandler struct {
	BaseHandler
	clientService  *appclient.ClientService
	contactService *appclient.ContactService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *appclient.ClientService, contactService *appclient.ContactService) *ClientHandler {
	return &ClientHandler{
		clientService:  clientService,
		contactService: contactService,
	}
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Description  Paginated client list with search over business name, code, RUC and sector
// @Tags         clients
// @Produce      json
// @Param        search query string false "Search text"
// @Param        status query string false "Status" Enums(Pendiente, Visitado, Por cotizar, Cotizado, Aprobado, Rechazado)
// @Param        sector query string false "Sector"
// @Param        group query string false "Status group" Enums(active, potential)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]appclient.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var filter appclient.ClientListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	clients, total, err := h.clientService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, clients, total, page, pageSize)
}

// Create godoc
// @ID           createClient
// @Summary      Create a client
// @Description  Create a client together with its principal contact
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body appclient.CreateClientRequest true "Client and principal contact"
// @Success      201 {object} APIResponse[appclient.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req appclient.CreateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// GetByID godoc
// @ID           getClientById
// @Summary      Get a client
// @Description  Client with its contacts
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[appclient.ClientResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	client, err := h.clientService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Update godoc
// @ID           updateClient
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body appclient.UpdateClientRequest true "Client fields"
// @Success      200 {object} APIResponse[appclient.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req appclient.UpdateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete godoc
// @ID           deleteClient
// @Summary      Delete a client
// @Description  Deletes the client and its contacts. Refused while quotations or orders exist.
// @Tags         clients
// @Param        id path string true "Client ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Options godoc
// @ID           listClientOptions
// @Summary      Client options
// @Description  ID and business name of every client, sorted by name
// @Tags         clients
// @Produce      json
// @Success      200 {object} APIResponse[[]appclient.ClientOption]
// @Security     BearerAuth
// @Router       /clients/options [get]
func (h *ClientHandler) Options(c *gin.Context) {
	options, err := h.clientService.ListOptions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, options)
}

// History godoc
// @ID           getClientHistory
// @Summary      Client history
// @Description  Visits, quotations and orders of the client, newest first
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[[]appclient.HistoryEntry]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/history [get]
func (h *ClientHandler) History(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	history, err := h.clientService.History(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// Contacts godoc
// @ID           listClientContacts
// @Summary      Contacts of a client
// @Description  Primary contact first, then by name
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[[]appclient.ContactResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/contacts [get]
func (h *ClientHandler) Contacts(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	contacts, err := h.contactService.ListByClient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contacts)
}

// ExportCSV godoc
// @ID           exportClientsCSV
// @Summary      Export clients as CSV
// @Description  Same filters as the list; every matching client is exported
// @Tags         clients
// @Produce      text/csv
// @Param        search query string false "Search text"
// @Param        status query string false "Status"
// @Param        sector query string false "Sector"
// @Param        group query string false "Status group" Enums(active, potential)
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /clients/export [get]
func (h *ClientHandler) ExportCSV(c *gin.Context) {
	var filter appclient.ClientListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	var buf bytes.Buffer
	if err := h.clientService.ExportCSV(c.Request.Context(), filter, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SendFile(c, exportName("clientes", "csv"), contentTypeCSV, &buf)
}

// ExportXLSX godoc
// @ID           exportClientsXLSX
// @Summary      Export clients as a spreadsheet
// @Tags         clients
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        search query string false "Search text"
// @Param        status query string false "Status"
// @Param        sector query string false "Sector"
// @Param        group query string false "Status group" Enums(active, potential)
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /clients/export.xlsx [get]
func (h *ClientHandler) ExportXLSX(c *gin.Context) {
	var filter appclient.ClientListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	var buf bytes.Buffer
	if err := h.clientService.ExportXLSX(c.Request.Context(), filter, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SendFile(c, exportName("clientes", "xlsx"), contentTypeXLSX, &buf)
}

// ImportTemplate godoc
// @ID           getClientImportTemplate
// @Summary      Client import template
// @Description  CSV header with an example row
// @Tags         clients
// @Produce      text/csv
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /clients/import/template [get]
func (h *ClientHandler) ImportTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.clientService.ImportTemplate(&buf); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SendFile(c, "plantilla_clientes.csv", contentTypeCSV, &buf)
}

// Import godoc
// @ID           importClients
// @Summary      Import clients from CSV
// @Description  Creates clients with their principal contacts. Rows with errors or duplicate RUCs are skipped and reported by row number.
// @Tags         clients
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file"
// @Success      200 {object} APIResponse[appclient.ImportResult]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/import [post]
func (h *ClientHandler) Import(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A CSV file is required in the 'file' field")
		return
	}
	if header.Size > MaxImportFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge,
			fmt.Sprintf("File exceeds the maximum size of %d MB", MaxImportFileSize>>20))
		return
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read the uploaded file")
		return
	}
	defer file.Close()

	result, err := h.clientService.ImportCSV(c.Request.Context(), actor, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
