package api

import (
	"context"
	"net/http"
	"strings"

	"finlog/pkg/finlog"
)

const ownerHeader = "X-Owner-ID"

// IdentityResolver maps a request to the owner whose ledger it may access.
// Authentication itself happens upstream; the resolver only reads its result.
type IdentityResolver interface {
	ResolveOwner(r *http.Request) (string, error)
}

// IdentityFunc adapts a function to IdentityResolver.
type IdentityFunc func(r *http.Request) (string, error)

// ResolveOwner calls f(r).
func (f IdentityFunc) ResolveOwner(r *http.Request) (string, error) {
	return f(r)
}

// HeaderIdentity reads the owner from the X-Owner-ID header, falling back to
// an opaque bearer token.
type HeaderIdentity struct{}

// ResolveOwner implements IdentityResolver.
func (HeaderIdentity) ResolveOwner(r *http.Request) (string, error) {
	if owner := strings.TrimSpace(r.Header.Get(ownerHeader)); owner != "" {
		return owner, nil
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		if token := strings.TrimSpace(auth[len("Bearer "):]); token != "" {
			return token, nil
		}
	}
	return "", finlog.NewError(finlog.ErrCodeUnauthorized, "missing owner identity")
}

type ownerKey struct{}

func (h *handler) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, err := h.identity.ResolveOwner(r)
		if err != nil || owner == "" {
			if err == nil {
				err = finlog.NewError(finlog.ErrCodeUnauthorized, "missing owner identity")
			}
			writeErrorResponse(w, http.StatusUnauthorized, err)
			return
		}
		if lw, ok := w.(interface{ SetOwner(string) }); ok {
			lw.SetOwner(owner)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, owner)))
	})
}

func ownerFrom(r *http.Request) string {
	owner, _ := r.Context().Value(ownerKey{}).(string)
	return owner
}
