package api

import (
	"infraspend/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler expenditure categories
type CategoryHandler struct {
	svc *service.Service
}

func NewCategoryHandler(svc *service.Service) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// List categories ordered by name
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Category}
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	list, err := h.svc.ListCategories(c.Request.Context(), actor(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, list)
}

// Get a category
// @Summary Get category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "category id"
// @Success 200 {object} Response{data=models.Category}
// @Failure 404 {object} Response
// @Router /api/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cat, err := h.svc.GetCategory(c.Request.Context(), actor(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, cat)
}

// Create a category
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CategoryInput true "category"
// @Success 201 {object} Response{data=models.Category}
// @Failure 400 {object} Response "invalid or duplicate name"
// @Failure 403 {object} Response
// @Router /api/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req service.CategoryInput
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), actor(c), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, cat)
}

// Update renames a category
// @Summary Rename category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "category id"
// @Param request body service.CategoryInput true "new name"
// @Success 200 {object} Response{data=models.Category}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Router /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.CategoryInput
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.svc.UpdateCategory(c.Request.Context(), actor(c), id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, cat)
}

// Delete a category
// @Summary Delete category
// @Description Expenditures keep the category name.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "category id"
// @Success 200 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), actor(c), id); err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, "category deleted", nil)
}
