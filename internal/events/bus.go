// Bus re-exports live here so modules import one events package for both the
// infrastructure and the event types.
package events

import (
	platformevents "leadtrack_backend/platform/events"
	"leadtrack_backend/platform/logger"
)

// InMemoryBus aliases the platform bus implementation.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates the process-local event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
