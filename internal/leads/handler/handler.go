// Package handler exposes the leads REST endpoints.
package handler

import (
	"net/http"
	"time"

	"leadtrack_backend/internal/leads/domain"
	"leadtrack_backend/internal/leads/service"
	"leadtrack_backend/internal/leads/transport"
	"leadtrack_backend/platform/apperr"
	"leadtrack_backend/platform/httpkit"
	"leadtrack_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// maxBulkUploadBytes caps the accepted CSV size.
const maxBulkUploadBytes = 10 << 20

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.Query)
	rg.POST("/bulk", h.BulkImport)
	rg.GET("/:leadId", h.Get)
	rg.PUT("/:leadId", h.Update)
	rg.DELETE("/:leadId", h.Delete)
	rg.POST("/:leadId/remarks", h.AddRemark)
}

func actorFrom(c *gin.Context) (domain.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return domain.Actor{}, false
	}
	return domain.Actor{Name: id.Name(), Role: id.Role()}, true
}

// Create records a new lead.
func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), actor, req.ToInput())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.FromLead(lead))
}

// Get returns one lead with its audit and transfer trails.
func (h *Handler) Get(c *gin.Context) {
	lead, err := h.svc.Get(c.Request.Context(), c.Param("leadId"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.FromLead(lead))
}

// Update applies a partial update through the diff/audit/transfer path.
func (h *Handler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	in, err := transport.DecodeUpdate(c.Request.Body)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid update payload", err.Error())
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), actor, c.Param("leadId"), in)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.FromLead(lead))
}

// Delete removes a lead and its follow-ups.
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor, c.Param("leadId")); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"deleted": true})
}

// AddRemark attaches a remark to a lead.
func (h *Handler) AddRemark(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req transport.RemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	lead, err := h.svc.AddRemark(c.Request.Context(), actor, c.Param("leadId"), req.Remark)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.FromLead(lead))
}

type listQuery struct {
	Status            string `form:"status"`
	SecondaryCategory string `form:"secondarycategory"`
	LeadOwner         string `form:"leadowner"`
	Source            string `form:"source"`
	Untouched         bool   `form:"untouched"`
	CreatedFrom       string `form:"createdFrom"`
	CreatedTo         string `form:"createdTo"`
	UpdatedFrom       string `form:"updatedFrom"`
	UpdatedTo         string `form:"updatedTo"`
	ReEnquiredFrom    string `form:"reEnquiredFrom"`
	ReEnquiredTo      string `form:"reEnquiredTo"`
	AgeMinDays        *int   `form:"ageMinDays"`
	AgeMaxDays        *int   `form:"ageMaxDays"`
	RecentCountFrom   *int   `form:"recentCountFrom"`
	RecentCountTo     *int   `form:"recentCountTo"`
	Page              int    `form:"page,default=1"`
	Limit             int    `form:"limit,default=10"`
}

// Query answers a role-scoped, filtered, paginated lead query.
func (h *Handler) Query(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	params := service.QueryParams{
		Status:          q.Status,
		RecentCountFrom: q.RecentCountFrom,
		RecentCountTo:   q.RecentCountTo,
		Page:            q.Page,
		Limit:           q.Limit,
		Filters: service.DynamicFilters{
			SecondaryCategory: q.SecondaryCategory,
			LeadOwner:         q.LeadOwner,
			Source:            q.Source,
			Untouched:         q.Untouched,
			AgeMinDays:        q.AgeMinDays,
			AgeMaxDays:        q.AgeMaxDays,
		},
	}

	ranges := []struct {
		raw  string
		dest **time.Time
	}{
		{q.CreatedFrom, &params.Filters.CreatedFrom},
		{q.CreatedTo, &params.Filters.CreatedTo},
		{q.UpdatedFrom, &params.Filters.UpdatedFrom},
		{q.UpdatedTo, &params.Filters.UpdatedTo},
		{q.ReEnquiredFrom, &params.Filters.ReEnquiredFrom},
		{q.ReEnquiredTo, &params.Filters.ReEnquiredTo},
	}
	for _, r := range ranges {
		t, err := parseDate(r.raw)
		if err != nil {
			httpkit.HandleError(c, apperr.Validation("invalid date value: "+r.raw))
			return
		}
		*r.dest = t
	}

	res, err := h.svc.Query(c.Request.Context(), actor, params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.FromQueryResult(res))
}

// BulkImport ingests a CSV of leads uploaded as multipart form data.
func (h *Handler) BulkImport(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "a csv file is required", nil)
		return
	}
	if fileHeader.Size > maxBulkUploadBytes {
		httpkit.Error(c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read uploaded file", nil)
		return
	}
	defer file.Close()

	result, err := h.svc.ImportCSV(c.Request.Context(), actor, fileHeader.Filename, file)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, result)
}

// parseDate accepts a calendar date or a full timestamp. Empty input is nil.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
