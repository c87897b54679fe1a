// Package remove реализует удаление сотрудника.
package remove

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

// Service удаляет пользователя.
type Service interface {
	Delete(ctx context.Context, id string) error
}

// Handler обрабатывает DELETE /user/delete/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Handle godoc
// @Summary Удалить сотрудника
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.MessageResponse
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Некорректный ID"
// @Router /user/delete/{id} [delete]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.user.remove"

	req, ok := middlewarectx.Payload[models.UserIDRequest](r.Context())
	if !ok {
		return errors.New(op + ": request payload missing")
	}

	if err := h.service.Delete(r.Context(), req.ID); err != nil {
		return err
	}

	h.log.Info("user removed",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("id", req.ID),
	)
	render.JSON(w, r, response.Message("User deleted successfully"))
	return nil
}
