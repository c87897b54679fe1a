// Package create реализует HTTP-обработчик создания сотрудника.
package create

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

// Service описывает интерфейс бизнес-логики создания пользователя.
type Service interface {
	Create(ctx context.Context, req models.CreateUserRequest) (string, error)
}

// Handler обрабатывает POST /user/create.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Handle godoc
// @Summary Создать сотрудника
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateUserRequest true "Данные сотрудника"
// @Success 201 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Логин или телефон заняты"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /user/create [post]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.user.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req, ok := middlewarectx.Payload[models.CreateUserRequest](r.Context())
	if !ok {
		return errors.New(op + ": request payload missing")
	}

	id, err := h.service.Create(r.Context(), req)
	if err != nil {
		return err
	}

	log.Info("user created", slog.String("id", id))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.Message("User created successfully"))
	return nil
}
