// Package followups is the follow-up scheduling bounded context.
package followups

import (
	"leadtrack_backend/internal/followups/handler"
	"leadtrack_backend/internal/followups/repository"
	"leadtrack_backend/internal/followups/service"
	apphttp "leadtrack_backend/internal/http"
	"leadtrack_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the follow-ups bounded context.
type Module struct {
	repo    *repository.Repository
	service *service.Service
	handler *handler.Handler
}

// NewModule creates the follow-ups module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	return &Module{
		repo:    repo,
		service: svc,
		handler: handler.New(svc, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "followups"
}

// Repository exposes the store for the followup scanner.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the follow-up routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/followups")
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
