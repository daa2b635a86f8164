package api

import (
	"fmt"
	"strconv"

	"infraspend/models"
	"infraspend/service"

	"github.com/gin-gonic/gin"
)

// ExpenditureHandler expenditure endpoints
type ExpenditureHandler struct {
	svc            *service.Service
	maxUploadBytes int64
}

// NewExpenditureHandler creates the handler. Uploads above maxUploadBytes are refused.
func NewExpenditureHandler(svc *service.Service, maxUploadBytes int64) *ExpenditureHandler {
	return &ExpenditureHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// StatusRequest review decision
type StatusRequest struct {
	Status models.ExpenditureStatus `json:"status" binding:"required" example:"approved"`
}

// List expenditures
// @Summary List expenditures
// @Description Admins see every expenditure, managers those of their project.
// @Tags expenditures
// @Produce json
// @Security BearerAuth
// @Param project_id query int false "project id"
// @Param status query string false "pending, approved or rejected"
// @Param category query string false "category name"
// @Success 200 {object} Response{data=[]models.Expenditure}
// @Failure 400 {object} Response
// @Router /api/expenditures [get]
func (h *ExpenditureHandler) List(c *gin.Context) {
	var f service.ExpenditureFilter
	if v := c.Query("project_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			BadRequest(c, "invalid project_id")
			return
		}
		f.ProjectID = uint(id)
	}
	f.Status = models.ExpenditureStatus(c.Query("status"))
	f.Category = c.Query("category")

	list, err := h.svc.ListExpenditures(c.Request.Context(), actor(c), f)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, list)
}

// Get an expenditure
// @Summary Get expenditure
// @Tags expenditures
// @Produce json
// @Security BearerAuth
// @Param id path int true "expenditure id"
// @Success 200 {object} Response{data=models.Expenditure}
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Router /api/expenditures/{id} [get]
func (h *ExpenditureHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, err := h.svc.GetExpenditure(c.Request.Context(), actor(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, e)
}

// Create an expenditure
// @Summary Submit expenditure
// @Description Managers submit against their project. New expenditures are always pending.
// @Tags expenditures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateExpenditureInput true "expenditure"
// @Success 201 {object} Response{data=models.Expenditure}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Router /api/expenditures [post]
func (h *ExpenditureHandler) Create(c *gin.Context) {
	var req service.CreateExpenditureInput
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.svc.CreateExpenditure(c.Request.Context(), actor(c), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, e)
}

// Update an expenditure
// @Summary Update expenditure
// @Description Only pending expenditures can be edited.
// @Tags expenditures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "expenditure id"
// @Param request body service.UpdateExpenditureInput true "fields to change"
// @Success 200 {object} Response{data=models.Expenditure}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/expenditures/{id} [put]
func (h *ExpenditureHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateExpenditureInput
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.svc.UpdateExpenditure(c.Request.Context(), actor(c), id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, e)
}

// Delete an expenditure
// @Summary Delete expenditure
// @Description Only pending expenditures can be deleted.
// @Tags expenditures
// @Produce json
// @Security BearerAuth
// @Param id path int true "expenditure id"
// @Success 200 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/expenditures/{id} [delete]
func (h *ExpenditureHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteExpenditure(c.Request.Context(), actor(c), id); err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, "expenditure deleted", nil)
}

// SetStatus approves or rejects
// @Summary Review expenditure
// @Description Admin only. pending can move to approved or rejected, once.
// @Tags expenditures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "expenditure id"
// @Param request body StatusRequest true "decision"
// @Success 200 {object} Response{data=models.Expenditure}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/expenditures/{id}/status [patch]
func (h *ExpenditureHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.svc.SetExpenditureStatus(c.Request.Context(), actor(c), id, req.Status)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, e)
}

// UploadAttachment adds a file
// @Summary Attach file
// @Tags expenditures
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "expenditure id"
// @Param file formData file true "attachment"
// @Success 200 {object} Response{data=models.Expenditure}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 409 {object} Response
// @Router /api/expenditures/{id}/attachments [post]
func (h *ExpenditureHandler) UploadAttachment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		BadRequest(c, fmt.Sprintf("file must not exceed %d bytes", h.maxUploadBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		Fail(c, err)
		return
	}
	defer f.Close()

	e, err := h.svc.AddAttachment(c.Request.Context(), actor(c), id, service.Upload{
		Name: fh.Filename,
		Type: fh.Header.Get("Content-Type"),
		Size: fh.Size,
		Body: f,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, e)
}
