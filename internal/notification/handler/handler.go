// Package handler exposes the role-scoped notification list endpoint.
package handler

import (
	"net/http"
	"strconv"

	"leadtrack_backend/internal/leads/domain"
	"leadtrack_backend/internal/notification/repository"
	"leadtrack_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
}

// List returns notifications visible to the calling actor, newest first.
func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	scope := repository.VisibilityParams{
		All:      domain.IsAdminTier(id.Role()),
		Category: id.Role(),
	}

	items, err := h.repo.ListVisible(c.Request.Context(), scope, limit, (page-1)*limit)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusOK, gin.H{"notifications": items, "page": page, "limit": limit})
}
