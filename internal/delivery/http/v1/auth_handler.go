package v1

import (
	"net/http"

	"go-profile-portal/config"
	"go-profile-portal/internal/delivery/http/middleware"
	"go-profile-portal/internal/delivery/http/response"
	"go-profile-portal/internal/domain"
	"go-profile-portal/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
	config *config.Config
}

func NewAuthHandler(public *gin.RouterGroup, protected *gin.RouterGroup, authUC domain.AuthUsecase, cfg *config.Config, loginLimit, registerLimit gin.HandlerFunc) {
	handler := &AuthHandler{
		authUC: authUC,
		config: cfg,
	}

	// Public Routes
	publicAuth := public.Group("/accounts")
	{
		publicAuth.POST("/register/", registerLimit, handler.Register)
		publicAuth.POST("/login/", loginLimit, handler.Login)
		publicAuth.POST("/logout/", handler.Logout)
	}

	// Protected Routes
	protectedAuth := protected.Group("/accounts")
	{
		protectedAuth.GET("/me/", handler.Me)
	}
}

// Register godoc
// @Summary      User Registration
// @Description  Create an account from name, mobile number, email, work status and a confirmed password.
// @Tags         accounts
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        register  body      domain.RegisterInput  true  "Registration Details"
// @Success      201       {object}  response.Response
// @Failure      400       {object}  response.Response
// @Failure      429       {object}  response.Response
// @Router       /accounts/register/ [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterInput
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.BadRequest("Malformed request body"))
		return
	}

	user, err := h.authUC.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Registration successful. Please log in.", user)
}

// Login godoc
// @Summary      User Login
// @Description  Exchange email and password for a session token. The token is also set as an HttpOnly cookie.
// @Tags         accounts
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        login  body      domain.LoginInput  true  "Login Credentials"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /accounts/login/ [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginInput
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.BadRequest("Malformed request body"))
		return
	}

	result, err := h.authUC.Login(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, result.Token, int(h.config.JWTTTL.Seconds()), "/", "", h.config.CookieSecure, true)

	response.Success(c, http.StatusOK, "Login successful", result)
}

// Logout godoc
// @Summary      User Logout
// @Description  Clear the session cookie. Bearer tokens expire on their own.
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /accounts/logout/ [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", h.config.CookieSecure, true)
	response.Success(c, http.StatusOK, "Logged out", nil)
}

// Me godoc
// @Summary      Current user
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /accounts/me/ [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Error(apperror.Unauthorized("Authentication credentials were not provided."))
		return
	}
	response.Success(c, http.StatusOK, "User details", user)
}
