package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleOwner Role = "owner" // Full CRUD on the namespace's zones/records
	RoleAdmin Role = "admin" // Operator access to the namespace
)

// MutatingRoles may create, change and delete zones and records.
var MutatingRoles = []Role{RoleOwner, RoleAdmin}

// Principal is the identity extracted from a verified id token.
type Principal struct {
	Subject string   `json:"sub"`
	Groups  []string `json:"groups"`
}

// HasRole reports whether the principal holds "{namespace}/{role}" for any of roles.
func (p Principal) HasRole(namespace string, roles ...Role) bool {
	if namespace == "" {
		return false
	}
	for _, g := range p.Groups {
		ns, role, ok := strings.Cut(g, "/")
		if !ok || ns != namespace {
			continue
		}
		for _, r := range roles {
			if Role(role) == r {
				return true
			}
		}
	}
	return false
}

// APIKey authenticates ACME DNS-01 webhook calls for one namespace.
type APIKey struct {
	ID        string     `json:"id"`
	Namespace string     `json:"namespace"`
	Name      string     `json:"name"`       // Human-readable label, e.g. "cert-manager"
	KeyHash   string     `json:"-"`          // SHA-256 hash of the key (never store raw)
	KeyPrefix string     `json:"key_prefix"` // First 8 chars for identification
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Usable reports whether the key is active and unexpired at now.
func (k *APIKey) Usable(now time.Time) bool {
	if k == nil || !k.Active {
		return false
	}
	return k.ExpiresAt == nil || k.ExpiresAt.After(now)
}
