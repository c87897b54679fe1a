package middlewarectx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/staffdesk/internal/http/pipeline"
	"github.com/magabrotheeeer/staffdesk/internal/lib/httperr"
	"github.com/magabrotheeeer/staffdesk/internal/lib/jwt"
	"github.com/magabrotheeeer/staffdesk/internal/models"
	"github.com/magabrotheeeer/staffdesk/internal/storage"
)

// TokenParser проверяет токен доступа.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.Claims, error)
}

// UserGetter загружает пользователя по идентификатору.
type UserGetter interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticate проверяет заголовок Authorization вида "Bearer <token>",
// разбирает токен и загружает пользователя. Дальше по конвейеру запрос
// идёт только с существующим пользователем в контексте.
func Authenticate(tokens TokenParser, users UserGetter) pipeline.Step {
	return func(_ http.ResponseWriter, r *http.Request) (*http.Request, error) {
		const op = "middlewarectx.Authenticate"

		parts := strings.Split(r.Header.Get("Authorization"), " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return nil, httperr.Unauthorized("Authentication token is required")
		}

		claims, err := tokens.ParseToken(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, httperr.Unauthorized("Invalid or expired token"), err)
		}
		if claims.ID == "" {
			return nil, httperr.Unauthorized("Invalid token payload")
		}

		user, err := users.GetUserByID(r.Context(), claims.ID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, httperr.NotFound("User not found")
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return r.WithContext(WithUser(r.Context(), user)), nil
	}
}
