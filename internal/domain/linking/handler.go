package linking

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

type requestLinking struct {
	SupplierCompanyID int64  `json:"supplier_company_id" binding:"required,gt=0"`
	Message           string `json:"message" binding:"max=2000"`
}

type respondLinking struct {
	Accept *bool `json:"accept" binding:"required"`
}

// Request POST /linkings
func (h *Handler) Request(c *gin.Context) {
	var req requestLinking
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	linking, err := h.service.Request(c.Request.Context(), c.GetInt64("user_id"), req.SupplierCompanyID, req.Message)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, linking)
}

// Respond POST /linkings/:id/respond
func (h *Handler) Respond(c *gin.Context) {
	id, ok := linkingID(c)
	if !ok {
		return
	}
	var req respondLinking
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	linking, err := h.service.Respond(c.Request.Context(), c.GetInt64("user_id"), id, *req.Accept)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, linking)
}

// Get GET /linkings/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := linkingID(c)
	if !ok {
		return
	}
	linking, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, linking)
}

// List GET /linkings
func (h *Handler) List(c *gin.Context) {
	linkings, err := h.service.ListForCompany(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"linkings": linkings})
}

func linkingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid linking id")
		return 0, false
	}
	return id, true
}
