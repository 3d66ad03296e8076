package handlers

import (
	"net/http"

	"blog-cms/config"
	"blog-cms/helper"
	"blog-cms/middleware"
	"blog-cms/models"
	"blog-cms/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	jwt         config.JWTConfig
	Helper      *helper.HTTPHelper
}

func NewAuthHandler(authService services.AuthService, jwtConf config.JWTConfig, httpHelper *helper.HTTPHelper) *AuthHandler {
	return &AuthHandler{authService: authService, jwt: jwtConf, Helper: httpHelper}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid registration", h.Helper.ValidationMessages(err))
		return
	}

	response, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.setAuthCookie(c, response.Token)
	h.Helper.SendSuccess(c, "Register success", response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid login", h.Helper.ValidationMessages(err))
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.setAuthCookie(c, response.Token)
	h.Helper.SendSuccess(c, "Login success", response)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.jwt.CookieName, "", -1, "/", "", h.jwt.Secure, true)
	h.Helper.SendSuccess(c, "Logout success", h.Helper.EmptyJsonMap())
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	user, err := h.authService.GetUserByID(c.Request.Context(), identity.UserID)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Profile loaded", user)
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.jwt.CookieName, token, int(h.jwt.Expiration.Seconds()), "/", "", h.jwt.Secure, true)
}
