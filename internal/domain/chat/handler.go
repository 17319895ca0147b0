package chat

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tradelink/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type historyQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// LinkingMessages GET /chats/linking/:id/messages
func (h *Handler) LinkingMessages(c *gin.Context) {
	id, q, ok := parseHistoryRequest(c)
	if !ok {
		return
	}
	history, err := h.service.LinkingHistory(c.Request.Context(), c.GetInt64("user_id"), id, q.Limit, q.Offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, history)
}

// OrderMessages GET /chats/order/:id/messages
func (h *Handler) OrderMessages(c *gin.Context) {
	id, q, ok := parseHistoryRequest(c)
	if !ok {
		return
	}
	history, err := h.service.OrderHistory(c.Request.Context(), c.GetInt64("user_id"), id, q.Limit, q.Offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, history)
}

func parseHistoryRequest(c *gin.Context) (int64, historyQuery, bool) {
	var q historyQuery
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid id")
		return 0, q, false
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return 0, q, false
	}
	return id, q, true
}
