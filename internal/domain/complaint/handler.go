package complaint

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tradelink/internal/domain"
	"tradelink/internal/pkg/response"
	"tradelink/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create POST /complaints
func (h *Handler) Create(c *gin.Context) {
	var req CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}
	complaint, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req.OrderID, req.Description)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, complaint)
}

// Escalate POST /complaints/:id/escalate
func (h *Handler) Escalate(c *gin.Context) {
	id, ok := complaintID(c)
	if !ok {
		return
	}
	var req EscalateRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context, actorID int64) (*domain.Complaint, error) {
		return h.service.Escalate(ctx, actorID, id, req.Notes)
	})
}

// Claim POST /complaints/:id/claim
func (h *Handler) Claim(c *gin.Context) {
	id, ok := complaintID(c)
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context, actorID int64) (*domain.Complaint, error) {
		return h.service.Claim(ctx, actorID, id)
	})
}

// Resolve POST /complaints/:id/resolve
func (h *Handler) Resolve(c *gin.Context) {
	id, ok := complaintID(c)
	if !ok {
		return
	}
	var req ResolutionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context, actorID int64) (*domain.Complaint, error) {
		return h.service.Resolve(ctx, actorID, id, Input{Notes: req.Notes, CancelOrder: req.CancelOrder})
	})
}

// Close POST /complaints/:id/close
func (h *Handler) Close(c *gin.Context) {
	id, ok := complaintID(c)
	if !ok {
		return
	}
	var req ResolutionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context, actorID int64) (*domain.Complaint, error) {
		return h.service.Close(ctx, actorID, id, Input{Notes: req.Notes, CancelOrder: req.CancelOrder})
	})
}

// Get GET /complaints/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := complaintID(c)
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context, actorID int64) (*domain.Complaint, error) {
		return h.service.Get(ctx, actorID, id)
	})
}

// History GET /complaints/:id/history
func (h *Handler) History(c *gin.Context) {
	id, ok := complaintID(c)
	if !ok {
		return
	}
	entries, err := h.service.History(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"history": entries})
}

func (h *Handler) Mine(c *gin.Context)          { h.list(c, h.service.Mine) }
func (h *Handler) AssignedToMe(c *gin.Context)  { h.list(c, h.service.AssignedToMe) }
func (h *Handler) EscalatedPool(c *gin.Context) { h.list(c, h.service.EscalatedPool) }
func (h *Handler) Managed(c *gin.Context)       { h.list(c, h.service.Managed) }
func (h *Handler) Company(c *gin.Context)       { h.list(c, h.service.Company) }

func (h *Handler) list(c *gin.Context, fetch func(context.Context, int64) ([]domain.Complaint, error)) {
	complaints, err := fetch(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"complaints": complaints})
}

func (h *Handler) respond(c *gin.Context, run func(context.Context, int64) (*domain.Complaint, error)) {
	complaint, err := run(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, complaint)
}

func complaintID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid complaint id")
		return 0, false
	}
	return id, true
}

// bindOptionalJSON accepts an empty body as the zero request.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return false
	}
	if errs := validator.Validate(dst); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", errs)
		return false
	}
	return true
}
