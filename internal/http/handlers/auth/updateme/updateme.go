// Package updateme реализует изменение собственного профиля.
package updateme

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

// Service меняет профиль пользователя.
type Service interface {
	UpdateMe(ctx context.Context, user *models.User, req models.UpdateMeRequest) error
}

// Handler обрабатывает PATCH /auth/update-me.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Handle godoc
// @Summary Изменить свой профиль
// @Description Меняет только переданные непустые поля.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateMeRequest true "Поля профиля"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Логин или телефон заняты"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/update-me [patch]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.auth.updateme"

	user, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		return errors.New(op + ": user missing in context")
	}
	req, ok := middlewarectx.Payload[models.UpdateMeRequest](r.Context())
	if !ok {
		return errors.New(op + ": request payload missing")
	}

	if err := h.service.UpdateMe(r.Context(), user, req); err != nil {
		return err
	}

	h.log.Info("profile updated",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", user.ID),
	)
	render.JSON(w, r, response.Message("Profile updated successfully"))
	return nil
}
