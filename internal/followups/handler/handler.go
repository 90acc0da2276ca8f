// Package handler exposes the follow-up REST endpoints.
package handler

import (
	"net/http"
	"time"

	"leadtrack_backend/internal/followups/service"
	"leadtrack_backend/platform/httpkit"
	"leadtrack_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/lead/:leadId", h.ListByLead)
	rg.PATCH("/:id/complete", h.Complete)
	rg.PATCH("/:id/reschedule", h.Reschedule)
	rg.PATCH("/:id/reopen", h.Reopen)
	rg.DELETE("/:id", h.Delete)
}

type createRequest struct {
	LeadID  string    `json:"leadId" validate:"required,uuid"`
	Title   string    `json:"title" validate:"required,min=1,max=200"`
	DueDate time.Time `json:"dueDate" validate:"required"`
	Notes   string    `json:"notes" validate:"omitempty,max=2000"`
}

// Create schedules a follow-up on a lead.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead identifier", nil)
		return
	}

	f, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		LeadID:  leadID,
		Title:   req.Title,
		DueDate: req.DueDate,
		Notes:   req.Notes,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, f)
}

// ListByLead returns a lead's follow-ups.
func (h *Handler) ListByLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead identifier", nil)
		return
	}

	items, err := h.svc.ListByLead(c.Request.Context(), leadID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"followups": items})
}

// Complete marks a follow-up done.
func (h *Handler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid followup identifier", nil)
		return
	}

	f, err := h.svc.Complete(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, f)
}

type rescheduleRequest struct {
	DueDate time.Time `json:"dueDate" validate:"required"`
	Notes   string    `json:"notes" validate:"omitempty,max=2000"`
}

// Reschedule moves a follow-up to a new due date.
func (h *Handler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid followup identifier", nil)
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	f, err := h.svc.Reschedule(c.Request.Context(), id, req.DueDate, req.Notes)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, f)
}

// Reopen returns a rescheduled follow-up to the pending pool.
func (h *Handler) Reopen(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid followup identifier", nil)
		return
	}

	f, err := h.svc.Reopen(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, f)
}

// Delete removes a follow-up.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid followup identifier", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"deleted": true})
}
