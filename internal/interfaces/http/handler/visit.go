package handler

import (
	"bytes"
	"context"

	"github.com/gin-gonic/gin"
	appvisit "github.com/salescrm/backend/internal/application/visit"
	"github.com/salescrm/backend/internal/domain/identity"
)

// VisitHandler handles visit and weekly planning HTTP requests
type VisitHandler struct {
	BaseHandler
	visitService *appvisit.VisitService
}

// NewVisitHandler creates a new VisitHandler
func NewVisitHandler(visitService *appvisit.VisitService) *VisitHandler {
	return &VisitHandler{visitService: visitService}
}

// VisitListResponse is a page of visits with the status counters of the actor
type VisitListResponse struct {
	Items []appvisit.VisitResponse `json:"items"`
	Stats *appvisit.VisitStats     `json:"stats"`
}

type planningQuery struct {
	Week int `form:"week" binding:"omitempty,min=1,max=53"`
	Year int `form:"year" binding:"omitempty,min=2024"`
}

// List godoc
// @ID           listVisits
// @Summary      List visits
// @Description  Sellers see their own visits, managers see every visit
// @Tags         visits
// @Produce      json
// @Param        search query string false "Title or client"
// @Param        status query string false "Status" Enums(pendiente, programada, aprobada, realizada, cancelada)
// @Param        type query string false "Type" Enums(comercial, tecnica, seguimiento, postventa)
// @Param        seller_id query string false "Seller ID" format(uuid)
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        week query int false "ISO week"
// @Param        year query int false "ISO year"
// @Param        date_from query string false "From date (YYYY-MM-DD)"
// @Param        date_to query string false "To date (YYYY-MM-DD)"
// @Param        scope query string false "Scope" Enums(today, this_week, overdue, upcoming)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[VisitListResponse]
// @Security     BearerAuth
// @Router       /visits [get]
func (h *VisitHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var filter appvisit.VisitListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	visits, total, stats, err := h.visitService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, VisitListResponse{Items: visits, Stats: stats}, total, page, pageSize)
}

// Create godoc
// @ID           createVisit
// @Summary      Schedule a visit
// @Description  The visit is created awaiting manager approval. The date cannot be in the past.
// @Tags         visits
// @Accept       json
// @Produce      json
// @Param        request body appvisit.VisitRequest true "Visit"
// @Success      201 {object} APIResponse[appvisit.VisitResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits [post]
func (h *VisitHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req appvisit.VisitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v, err := h.visitService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, v)
}

// GetByID godoc
// @ID           getVisitById
// @Summary      Get a visit
// @Tags         visits
// @Produce      json
// @Param        id path string true "Visit ID" format(uuid)
// @Success      200 {object} APIResponse[appvisit.VisitResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/{id} [get]
func (h *VisitHandler) GetByID(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	v, err := h.visitService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

// Update godoc
// @ID           updateVisit
// @Summary      Update a visit
// @Description  Moving the date of an approved visit sends it back for approval
// @Tags         visits
// @Accept       json
// @Produce      json
// @Param        id path string true "Visit ID" format(uuid)
// @Param        request body appvisit.VisitRequest true "Visit"
// @Success      200 {object} APIResponse[appvisit.VisitResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/{id} [put]
func (h *VisitHandler) Update(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req appvisit.VisitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v, err := h.visitService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

// Delete godoc
// @ID           deleteVisit
// @Summary      Delete a visit
// @Tags         visits
// @Param        id path string true "Visit ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/{id} [delete]
func (h *VisitHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.visitService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Planning godoc
// @ID           getVisitPlanning
// @Summary      Weekly planning
// @Description  Visits of the seller in an ISO week (current week by default) and the client options
// @Tags         planning
// @Produce      json
// @Param        week query int false "ISO week"
// @Param        year query int false "ISO year"
// @Success      200 {object} APIResponse[appvisit.PlanningData]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/planning [get]
func (h *VisitHandler) Planning(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q planningQuery
	if !h.BindQuery(c, &q) {
		return
	}

	data, err := h.visitService.PlanningData(c.Request.Context(), actor, q.Week, q.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// SavePlanning godoc
// @ID           saveVisitPlanning
// @Summary      Save draft visits of a week
// @Tags         planning
// @Accept       json
// @Produce      json
// @Param        request body appvisit.SavePlanningRequest true "Draft visits"
// @Success      201 {object} APIResponse[[]appvisit.VisitResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/planning/save [post]
func (h *VisitHandler) SavePlanning(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req appvisit.SavePlanningRequest
	if !h.BindJSON(c, &req) {
		return
	}

	visits, err := h.visitService.SavePlanning(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, visits)
}

// SubmitPlanning godoc
// @ID           submitVisitPlanning
// @Summary      Submit a week for approval
// @Tags         planning
// @Accept       json
// @Produce      json
// @Param        request body appvisit.WeekRequest true "Week"
// @Success      200 {object} APIResponse[appvisit.PlanningResult]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/planning/submit [post]
func (h *VisitHandler) SubmitPlanning(c *gin.Context) {
	h.weekAction(c, h.visitService.SubmitPlanning)
}

// RevertPlanning godoc
// @ID           revertVisitPlanning
// @Summary      Withdraw a submitted week
// @Description  Visits awaiting approval go back to draft
// @Tags         planning
// @Accept       json
// @Produce      json
// @Param        request body appvisit.WeekRequest true "Week"
// @Success      200 {object} APIResponse[appvisit.PlanningResult]
// @Security     BearerAuth
// @Router       /visits/planning/revert [post]
func (h *VisitHandler) RevertPlanning(c *gin.Context) {
	h.weekAction(c, h.visitService.RevertPlanning)
}

func (h *VisitHandler) weekAction(c *gin.Context, action func(ctx context.Context, actor identity.Actor, req appvisit.WeekRequest) (*appvisit.PlanningResult, error)) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req appvisit.WeekRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := action(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ApprovePlanning godoc
// @ID           approveVisitPlanning
// @Summary      Approve or reject a seller's week
// @Tags         planning
// @Accept       json
// @Produce      json
// @Param        request body appvisit.ApprovePlanningRequest true "Decision"
// @Success      200 {object} APIResponse[appvisit.PlanningResult]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/planning/approve [post]
func (h *VisitHandler) ApprovePlanning(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req appvisit.ApprovePlanningRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.visitService.ApprovePlanning(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Review godoc
// @ID           reviewVisit
// @Summary      Approve or reject a single visit
// @Tags         visits
// @Accept       json
// @Produce      json
// @Param        id path string true "Visit ID" format(uuid)
// @Param        request body appvisit.ReviewRequest true "Decision"
// @Success      200 {object} APIResponse[appvisit.VisitResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/{id}/review [post]
func (h *VisitHandler) Review(c *gin.Context) {
	bodyAction(&h.BaseHandler, c, false, h.visitService.Review)
}

// Complete godoc
// @ID           completeVisit
// @Summary      Complete a visit
// @Description  Records the result of an approved visit and updates the client's last contact
// @Tags         visits
// @Accept       json
// @Produce      json
// @Param        id path string true "Visit ID" format(uuid)
// @Param        request body appvisit.CompleteVisitRequest true "Outcome"
// @Success      200 {object} APIResponse[appvisit.VisitResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/{id}/complete [post]
func (h *VisitHandler) Complete(c *gin.Context) {
	bodyAction(&h.BaseHandler, c, false, h.visitService.Complete)
}

// Realize godoc
// @ID           realizeVisit
// @Summary      Mark a visit as done
// @Tags         visits
// @Accept       json
// @Produce      json
// @Param        id path string true "Visit ID" format(uuid)
// @Param        request body appvisit.RealizeVisitRequest false "Outcome"
// @Success      200 {object} APIResponse[appvisit.VisitResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/{id}/realize [post]
func (h *VisitHandler) Realize(c *gin.Context) {
	bodyAction(&h.BaseHandler, c, true, h.visitService.Realize)
}

// Cancel godoc
// @ID           cancelVisit
// @Summary      Cancel a visit
// @Tags         visits
// @Accept       json
// @Produce      json
// @Param        id path string true "Visit ID" format(uuid)
// @Param        request body appvisit.CancelVisitRequest true "Reason"
// @Success      200 {object} APIResponse[appvisit.VisitResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/{id}/cancel [post]
func (h *VisitHandler) Cancel(c *gin.Context) {
	bodyAction(&h.BaseHandler, c, false, h.visitService.Cancel)
}

// Reschedule godoc
// @ID           rescheduleVisit
// @Summary      Move a visit to another date
// @Tags         visits
// @Accept       json
// @Produce      json
// @Param        id path string true "Visit ID" format(uuid)
// @Param        request body appvisit.RescheduleVisitRequest true "New date"
// @Success      200 {object} APIResponse[appvisit.VisitResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/{id}/reschedule [post]
func (h *VisitHandler) Reschedule(c *gin.Context) {
	bodyAction(&h.BaseHandler, c, false, h.visitService.Reschedule)
}

// UpdateComments godoc
// @ID           updateVisitComments
// @Summary      Update visit comments
// @Description  Managers write manager comments, the owner seller writes comments
// @Tags         visits
// @Accept       json
// @Produce      json
// @Param        id path string true "Visit ID" format(uuid)
// @Param        request body appvisit.CommentsRequest true "Comments"
// @Success      200 {object} APIResponse[appvisit.VisitResponse]
// @Security     BearerAuth
// @Router       /visits/{id}/comments [put]
func (h *VisitHandler) UpdateComments(c *gin.Context) {
	bodyAction(&h.BaseHandler, c, false, h.visitService.UpdateComments)
}

// CreateUnplanned godoc
// @ID           createUnplannedVisit
// @Summary      Report an unplanned visit
// @Description  The visit is stored as already done
// @Tags         visits
// @Accept       json
// @Produce      json
// @Param        request body appvisit.UnplannedVisitRequest true "Visit report"
// @Success      201 {object} APIResponse[appvisit.VisitResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /visits/unplanned [post]
func (h *VisitHandler) CreateUnplanned(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req appvisit.UnplannedVisitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v, err := h.visitService.CreateUnplanned(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, v)
}

// ExportXLSX godoc
// @ID           exportVisitsXLSX
// @Summary      Export visits as a spreadsheet
// @Tags         visits
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        week query int false "ISO week"
// @Param        year query int false "ISO year"
// @Param        seller_id query string false "Seller ID" format(uuid)
// @Param        status query string false "Status"
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /visits/export.xlsx [get]
func (h *VisitHandler) ExportXLSX(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var filter appvisit.VisitListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	var buf bytes.Buffer
	if err := h.visitService.ExportXLSX(c.Request.Context(), actor, filter, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SendFile(c, exportName("visitas", "xlsx"), contentTypeXLSX, &buf)
}
