package httpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/greenboard/eco-intake/internal/domain"
)

// Principal is the already-authenticated caller. Authentication itself is an
// upstream concern: the gateway verifies the token and injects identity
// headers, and this service trusts them.
type Principal struct {
	UserID string
	Role   string
}

// Roles recognized by the intake surface.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

type principalKey struct{}

// PrincipalMiddleware extracts the gateway-injected identity headers and
// rejects requests that arrive without them.
func PrincipalMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := Principal{
				UserID: r.Header.Get("X-User-Id"),
				Role:   r.Header.Get("X-User-Role"),
			}
			if p.UserID == "" || p.Role == "" {
				writeJSON(w, http.StatusUnauthorized, errorEnvelope{
					Error: "missing identity headers",
					Code:  "UNAUTHENTICATED",
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
		})
	}
}

// PrincipalFrom returns the authenticated principal, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// requireRole returns the principal or an error when the role does not match.
func requireRole(ctx context.Context, role string) (Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return Principal{}, fmt.Errorf("%w: no principal", domain.ErrInvalidArgument)
	}
	if p.Role != role && p.Role != RoleAdmin {
		return Principal{}, fmt.Errorf("%w: role %s required", domain.ErrInvalidArgument, role)
	}
	return p, nil
}
