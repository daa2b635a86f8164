package api

import (
	"fmt"
	"net/http"

	"infraspend/service"

	"github.com/gin-gonic/gin"
)

// ProjectHandler project endpoints
type ProjectHandler struct {
	svc *service.Service
}

func NewProjectHandler(svc *service.Service) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// List projects
// @Summary List projects
// @Description Admins see every project, managers their assigned one. Each carries remaining and utilization.
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]service.ProjectDetail}
// @Router /api/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context(), actor(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, projects)
}

// Get a project
// @Summary Get project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {object} Response{data=service.ProjectDetail}
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Router /api/projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.svc.GetProject(c.Request.Context(), actor(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, p)
}

// Create a project
// @Summary Create project
// @Description total_expenditure is derived from approved expenditures and cannot be set.
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateProjectInput true "project"
// @Success 201 {object} Response{data=service.ProjectDetail}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Router /api/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.CreateProject(c.Request.Context(), actor(c), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, p)
}

// Update a project
// @Summary Update project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Param request body service.UpdateProjectInput true "fields to change"
// @Success 200 {object} Response{data=service.ProjectDetail}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Router /api/projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateProjectInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.UpdateProject(c.Request.Context(), actor(c), id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, p)
}

// Delete a project
// @Summary Delete project
// @Description Only projects without expenditures can be deleted.
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteProject(c.Request.Context(), actor(c), id); err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, "project deleted", nil)
}

// Expenditures of a project
// @Summary List project expenditures
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {object} Response{data=[]models.Expenditure}
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Router /api/projects/{id}/expenditures [get]
func (h *ProjectHandler) Expenditures(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.svc.ProjectExpenditures(c.Request.Context(), actor(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, list)
}

// Report downloads the project report
// @Summary Export project report
// @Tags projects
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "project id"
// @Success 200 {file} file
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Router /api/projects/{id}/report [get]
func (h *ProjectHandler) Report(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := h.svc.ExportProjectReport(c.Request.Context(), actor(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", r.Filename))
	c.Data(http.StatusOK, service.XLSXContentType, r.Content)
}
