// Package password реализует смену собственного пароля.
package password

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/staffdesk/internal/http/middlewarectx"
	"github.com/magabrotheeeer/staffdesk/internal/http/response"
	"github.com/magabrotheeeer/staffdesk/internal/models"
)

// Service меняет пароль.
type Service interface {
	UpdatePassword(ctx context.Context, userID string, req models.UpdatePasswordRequest) error
}

// Handler обрабатывает PATCH /auth/update-password.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Handle godoc
// @Summary Сменить пароль
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdatePasswordRequest true "Текущий и новый пароль"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Неверный текущий пароль или пароль не изменился"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/update-password [patch]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.auth.password"

	user, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		return errors.New(op + ": user missing in context")
	}
	req, ok := middlewarectx.Payload[models.UpdatePasswordRequest](r.Context())
	if !ok {
		return errors.New(op + ": request payload missing")
	}

	if err := h.service.UpdatePassword(r.Context(), user.ID, req); err != nil {
		return err
	}

	h.log.Info("password updated",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", user.ID),
	)
	render.JSON(w, r, response.Message("Password updated successfully"))
	return nil
}
