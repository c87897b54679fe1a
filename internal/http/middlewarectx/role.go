package middlewarectx

import (
	"net/http"
	"slices"

	"github.com/magabrotheeeer/staffdesk/internal/http/pipeline"
	"github.com/magabrotheeeer/staffdesk/internal/lib/httperr"
	"github.com/magabrotheeeer/staffdesk/internal/models"
)

// RequireRoles пропускает запрос, только если роль пользователя входит в roles.
// Должен стоять после Authenticate.
func RequireRoles(roles ...models.Role) pipeline.Step {
	allowed := slices.Clone(roles)
	return func(_ http.ResponseWriter, r *http.Request) (*http.Request, error) {
		user, ok := UserFrom(r.Context())
		if !ok || user.Role == "" {
			return nil, httperr.Forbidden("User role not found.")
		}
		if !slices.Contains(allowed, user.Role) {
			return nil, httperr.Forbidden("Access denied. Insufficient permissions.")
		}
		return r, nil
	}
}
