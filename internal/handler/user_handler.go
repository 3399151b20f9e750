package handler

import (
	"net/http"

	"aprobaciones/internal/service"
	"aprobaciones/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes the user directory and login.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes mounts the directory endpoints.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/api/users")
	{
		users.GET("", h.List)
		users.POST("/login", h.Login)
	}
}

// List returns the user directory ordered by id
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200 {object} response.Response{data=[]model.User}
// @Router       /api/users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "failed to list users"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, users))
}

// Login exchanges directory credentials for a JWT
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        credentials body service.LoginInput true "Username and password"
// @Success      200 {object} response.Response{data=service.TokenResponse}
// @Failure      400 {object} response.Response
// @Failure      401 {object} response.Response
// @Router       /api/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var in service.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	token, err := h.userService.Login(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}
