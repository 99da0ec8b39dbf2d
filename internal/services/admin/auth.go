package admin

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/platform/requestctx"
	"github.com/veilspire/gridlink/internal/token"
)

type claimsContextKey struct{}

// claimsFromContext returns the validated session claims, if any.
func claimsFromContext(ctx context.Context) (token.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(token.Claims)
	return claims, ok
}

// requireAuth wraps next with bearer-token authentication. minRole gates the
// route: operators pass everywhere, viewers only where viewer access is
// enough.
func (s *Server) requireAuth(minRole token.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			s.writeError(w, r, apperrors.New(apperrors.CodeTokenMissing, "authorization header is required"))
			return
		}

		claims, err := token.Validate(raw, s.tokenConfig)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !roleAllows(claims.Role, minRole) {
			s.writeError(w, r, apperrors.WithMetadata(apperrors.CodeTokenInvalid,
				"role is not allowed on this route",
				map[string]string{"role": string(claims.Role)}))
			return
		}

		ctx := requestctx.WithUserID(r.Context(), claims.UserID)
		ctx = context.WithValue(ctx, claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func roleAllows(have, need token.Role) bool {
	if have == token.RoleOperator {
		return true
	}
	return have == need
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
