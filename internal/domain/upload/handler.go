package upload

import (
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

// UploadURL GET /uploads/upload-url?ext=jpg
func (h *Handler) UploadURL(c *gin.Context) {
	ext := c.Query("ext")
	if ext == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "ext query parameter is required")
		return
	}
	ticket, err := h.service.Issue(c.Request.Context(), c.GetInt64("user_id"), ext)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ticket)
}

// ListMy GET /uploads
func (h *Handler) ListMy(c *gin.Context) {
	uploads, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"uploads": uploads})
}
