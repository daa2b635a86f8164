package api

import (
	"infraspend/service"

	"github.com/gin-gonic/gin"
)

// UserHandler user management
type UserHandler struct {
	svc *service.Service
}

func NewUserHandler(svc *service.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// List users
// @Summary List users
// @Description Admins see every user, managers only themselves.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.User}
// @Router /api/users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), actor(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, users)
}

// Get a user
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Success 200 {object} Response{data=models.User}
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Router /api/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.svc.GetUser(c.Request.Context(), actor(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, user)
}

// Create a user
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateUserInput true "user"
// @Success 201 {object} Response{data=models.User}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Router /api/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.CreateUser(c.Request.Context(), actor(c), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, user)
}

// Update a user
// @Summary Update user
// @Description Omitted fields are unchanged. project_id 0 unassigns the user.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Param request body service.UpdateUserInput true "fields to change"
// @Success 200 {object} Response{data=models.User}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Router /api/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.UpdateUser(c.Request.Context(), actor(c), id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, user)
}

// Delete a user
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Success 200 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), actor(c), id); err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, "user deleted", nil)
}
