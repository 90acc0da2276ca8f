// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Identity represents the authenticated actor. Every mutation in the engine
// is attributed to an actor name and a single department role; both come from
// the authentication layer and are trusted as given.
type Identity interface {
	// Name returns the actor's display name.
	Name() string
	// Role returns the actor's department role (e.g. "sales", "support", "admin").
	Role() string
	// IsAuthenticated returns true if the actor is authenticated.
	IsAuthenticated() bool
}

// identity is the concrete implementation of Identity.
type identity struct {
	name          string
	role          string
	authenticated bool
}

func (i *identity) Name() string          { return i.name }
func (i *identity) Role() string          { return i.role }
func (i *identity) IsAuthenticated() bool { return i.authenticated }

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if actor info is not present.
func GetIdentity(c *gin.Context) Identity {
	name, nameOK := c.Get(ContextActorNameKey)
	role, roleOK := c.Get(ContextActorRoleKey)

	if !nameOK || !roleOK {
		return &identity{authenticated: false}
	}

	actorName, ok := name.(string)
	if !ok || actorName == "" {
		return &identity{authenticated: false}
	}

	actorRole, _ := role.(string)

	return &identity{
		name:          actorName,
		role:          actorRole,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the actor is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
