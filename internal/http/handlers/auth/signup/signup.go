// Package signup реализует регистрацию руководителя по секретному ключу.
package signup

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

// Service регистрирует руководителя.
type Service interface {
	SignUpCEO(ctx context.Context, req models.SignUpCEORequest) error
}

// Handler обрабатывает POST /auth/sign-up/ceo.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Handle godoc
// @Summary Регистрация руководителя
// @Description Создаёт единственного пользователя с ролью ceo. Требует ключ регистрации.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.SignUpCEORequest true "Данные руководителя"
// @Success 201 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Неверный ключ, руководитель уже есть или логин занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/sign-up/ceo [post]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.auth.signup"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req, ok := middlewarectx.Payload[models.SignUpCEORequest](r.Context())
	if !ok {
		return errors.New(op + ": request payload missing")
	}

	if err := h.service.SignUpCEO(r.Context(), req); err != nil {
		return err
	}

	log.Info("ceo signed up", slog.String("username", req.Username))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.Message("CEO created successfully"))
	return nil
}
