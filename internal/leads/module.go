// Package leads is the lead bounded context: change tracking, audit and
// transfer trails, and the role-scoped query engine.
package leads

import (
	"fmt"

	"leadtrack_backend/internal/events"
	apphttp "leadtrack_backend/internal/http"
	"leadtrack_backend/internal/leads/handler"
	"leadtrack_backend/internal/leads/repository"
	"leadtrack_backend/internal/leads/service"
	"leadtrack_backend/platform/config"
	"leadtrack_backend/platform/logger"
	"leadtrack_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context.
type Module struct {
	repo    *repository.Repository
	service *service.Service
	handler *handler.Handler
}

// NewModule creates the leads module, loading the scope-override table from
// the configured file.
func NewModule(pool *pgxpool.Pool, bus events.Bus, cfg config.QueryConfig, val *validator.Validator, log *logger.Logger) (*Module, error) {
	scopes, err := service.LoadScopeTable(cfg.GetScopeOverridesFile())
	if err != nil {
		return nil, fmt.Errorf("load scope overrides: %w", err)
	}

	repo := repository.New(pool)
	svc := service.New(repo, bus, scopes, cfg, log)
	return &Module{
		repo:    repo,
		service: svc,
		handler: handler.New(svc, val),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes the lead service for sibling modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the store for the periodic scanners.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
