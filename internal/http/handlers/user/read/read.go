// Package read отдаёт одного сотрудника по ID.
package read

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/staffdesk/internal/http/middlewarectx"
	"github.com/magabrotheeeer/staffdesk/internal/http/response"
	"github.com/magabrotheeeer/staffdesk/internal/models"
)

// Service загружает пользователя.
type Service interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// Handler обрабатывает GET /user/get-one/{id}.
type Handler struct {
	service Service
}

// New создает Handler.
func New(service Service) *Handler {
	return &Handler{service: service}
}

// Handle godoc
// @Summary Сотрудник по ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.DataResponse{data=models.User}
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Некорректный ID"
// @Router /user/get-one/{id} [get]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	req, ok := middlewarectx.Payload[models.UserIDRequest](r.Context())
	if !ok {
		return errors.New("handlers.user.read: request payload missing")
	}

	user, err := h.service.Get(r.Context(), req.ID)
	if err != nil {
		return err
	}
	render.JSON(w, r, response.Data(user))
	return nil
}
