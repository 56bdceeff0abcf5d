package handlers

import (
	"net/http"
	"strconv"

	"polling-backend/service"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes the identity gateway over HTTP.
type UserHandler struct {
	users service.UserService
}

func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup.
func (h *UserHandler) Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body or data format")
		return
	}

	view, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body or data format")
		return
	}

	view, err := h.users.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetUser handles GET /api/users/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "Invalid user ID format")
		return
	}

	view, err := h.users.GetUser(c.Request.Context(), uint(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type UpdateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateUser handles PUT /api/users/:id.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "Invalid user ID format")
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body or data format")
		return
	}

	view, err := h.users.UpdateProfile(c.Request.Context(), uint(id), input.Username, input.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
