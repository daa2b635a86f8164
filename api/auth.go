package api

import (
	"net/http"

	"infraspend/config"
	"infraspend/middleware"
	"infraspend/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler login and session endpoints
type AuthHandler struct {
	cfg *config.Config
	svc *service.Service
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(cfg *config.Config, svc *service.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, svc: svc}
}

// LoginRequest login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// Login signs a user in
// @Summary Log in
// @Description Checks the credentials and starts a session. The token is returned in the Authorization header and the session_token cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "credentials"
// @Success 200 {object} Response{data=models.User}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 429 {object} Response
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		Fail(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		Fail(c, err)
		return
	}

	c.Header("Authorization", "Bearer "+token)
	h.setSessionCookie(c, token, int(h.cfg.JWT.ExpireTime.Seconds()))
	Success(c, user)
}

// Logout ends the browser session
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} Response
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	SuccessWithMessage(c, "logged out", nil)
}

// Me returns the session user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User}
// @Failure 401 {object} Response
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	Success(c, actor(c))
}

// setSessionCookie writes the HttpOnly session cookie. In release mode it is
// Secure; SameSite=Lax keeps it off cross-site POSTs.
func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.cfg.Server.Mode == "release", true)
}
