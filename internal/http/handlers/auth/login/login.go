// Package login реализует HTTP-обработчик входа по логину и паролю.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/staffdesk/internal/http/middlewarectx"
	"github.com/magabrotheeeer/staffdesk/internal/models"
)

// Response — успешный ответ со свежим токеном доступа.
type Response struct {
	Success     bool   `json:"success" example:"true"`
	AccessToken string `json:"accessToken"`
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, req models.LoginRequest) (string, error)
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Handle godoc
// @Summary Вход в систему
// @Description Проверяет логин и пароль и возвращает JWT со сроком жизни 7 дней.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Учетные данные"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Неверный логин или пароль"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /auth/login [post]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.auth.login"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req, ok := middlewarectx.Payload[models.LoginRequest](r.Context())
	if !ok {
		return errors.New(op + ": request payload missing")
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		return err
	}

	log.Info("login success", slog.String("username", req.Username))
	render.JSON(w, r, Response{Success: true, AccessToken: token})
	return nil
}
