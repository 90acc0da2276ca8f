package tickets

import (
	"net/http"

	"leadtrack_backend/internal/email"
	"leadtrack_backend/internal/events"
	apphttp "leadtrack_backend/internal/http"
	leaddomain "leadtrack_backend/internal/leads/domain"
	leadservice "leadtrack_backend/internal/leads/service"
	"leadtrack_backend/platform/config"
	"leadtrack_backend/platform/httpkit"
	"leadtrack_backend/platform/logger"
	"leadtrack_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Module is the support-ticket bounded context.
type Module struct {
	service *Service
	val     *validator.Validator
}

// NewModule creates the tickets module.
func NewModule(leads *leadservice.Service, sender email.Sender, bus events.Bus, cfg config.EmailConfig, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{service: NewService(leads, sender, bus, cfg, log), val: val}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tickets"
}

// RegisterRoutes mounts the ticket routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/tickets")
	group.POST("", m.raise)
}

type raiseRequest struct {
	LeadID      string `json:"leadId" validate:"omitempty,max=50"`
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

func (m *Module) raise(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req raiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := m.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	actor := leaddomain.Actor{Name: id.Name(), Role: id.Role()}
	err := m.service.Raise(c.Request.Context(), actor, RaiseInput{
		LeadID:      req.LeadID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{"raised": true})
}

var _ apphttp.Module = (*Module)(nil)
