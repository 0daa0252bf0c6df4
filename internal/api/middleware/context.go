package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	TenantID  uuid.UUID
	KeyPrefix string
	Scopes    []string
}

type principalKey struct{}

// WithPrincipal attaches p to ctx. If an outer middleware reserved an empty
// slot (see Logger), the slot is filled in place so that middleware can read
// the caller after the request completes.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if slot, ok := ctx.Value(principalKey{}).(*Principal); ok && slot.empty() {
		*slot = p
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, &p)
}

// reservePrincipal installs an empty slot for WithPrincipal to fill.
func reservePrincipal(ctx context.Context) (context.Context, *Principal) {
	slot := &Principal{}
	return context.WithValue(ctx, principalKey{}, slot), slot
}

func principalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	if !ok || p.empty() {
		return Principal{}, false
	}
	return *p, true
}

func (p *Principal) empty() bool {
	return p.TenantID == uuid.Nil && p.KeyPrefix == "" && len(p.Scopes) == 0
}

// SetTenantID returns ctx with the caller's tenant set, keeping any other
// principal fields already present.
func SetTenantID(ctx context.Context, id uuid.UUID) context.Context {
	p, _ := principalFrom(ctx)
	p.TenantID = id
	return WithPrincipal(ctx, p)
}

func GetTenantID(r *http.Request) (uuid.UUID, bool) {
	p, ok := principalFrom(r.Context())
	if !ok || p.TenantID == uuid.Nil {
		return uuid.Nil, false
	}
	return p.TenantID, true
}

func getKeyPrefix(r *http.Request) (string, bool) {
	p, ok := principalFrom(r.Context())
	if !ok || p.KeyPrefix == "" {
		return "", false
	}
	return p.KeyPrefix, true
}

func getScopes(r *http.Request) []string {
	p, _ := principalFrom(r.Context())
	return p.Scopes
}
