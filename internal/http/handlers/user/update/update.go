// Package update реализует HTTP-обработчик изменения сотрудника.
package update

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

// Service меняет данные сотрудника.
type Service interface {
	Update(ctx context.Context, req models.UpdateUserRequest) error
}

// Handler обрабатывает PUT /user/update/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Handle godoc
// @Summary Изменить сотрудника
// @Description Меняет только переданные непустые поля. Пароль перехэшируется, если отличается от текущего.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Param request body models.UpdateUserRequest true "Поля для изменения"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Логин или телефон заняты"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /user/update/{id} [put]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.user.update"

	req, ok := middlewarectx.Payload[models.UpdateUserRequest](r.Context())
	if !ok {
		return errors.New(op + ": request payload missing")
	}

	if err := h.service.Update(r.Context(), req); err != nil {
		return err
	}

	h.log.Info("user updated",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("id", req.ID),
	)
	render.JSON(w, r, response.Message("User updated successfully"))
	return nil
}
