package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradelink/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignIn POST /auth/sign-in
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
		case errors.Is(err, ErrAccountSuspended):
			response.Error(c, http.StatusForbidden, "ACCOUNT_SUSPENDED", "Account is suspended")
		default:
			response.FromError(c, err)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":    result.User,
		"company": result.Company,
		"tokens": gin.H{
			"access_token": result.AccessToken,
			"expires_in":   int64(result.ExpiresIn.Seconds()),
		},
	})
}

// Me GET /auth/me
func (h *Handler) Me(c *gin.Context) {
	user, company, err := h.service.CurrentUser(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":    user,
		"company": company,
	})
}
