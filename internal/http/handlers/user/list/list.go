// Package list отдаёт постраничный список сотрудников с поиском и фильтром по роли.
package list

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/staffdesk/internal/http/middlewarectx"
	"github.com/magabrotheeeer/staffdesk/internal/models"
)

// Response — страница пользователей.
type Response struct {
	Success    bool              `json:"success" example:"true"`
	Data       []models.User     `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

// Service выбирает пользователей.
type Service interface {
	List(ctx context.Context, req models.ListUsersRequest) ([]models.User, models.Pagination, error)
}

// Handler обрабатывает GET /user/get-all.
type Handler struct {
	service Service
}

// New создает Handler.
func New(service Service) *Handler {
	return &Handler{service: service}
}

// Handle godoc
// @Summary Список сотрудников
// @Description Руководитель в выдачу не попадает. Новые записи первыми.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Страница, с 1"
// @Param limit query int false "Размер страницы, 1..100"
// @Param search query string false "Подстрока в логине, имени или телефоне"
// @Param role query string false "Роль" Enums(admin, manager, employee)
// @Success 200 {object} Response
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /user/get-all [get]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	req, ok := middlewarectx.Payload[models.ListUsersRequest](r.Context())
	if !ok {
		return errors.New("handlers.user.list: request payload missing")
	}

	users, p, err := h.service.List(r.Context(), req)
	if err != nil {
		return err
	}
	if users == nil {
		users = []models.User{}
	}

	render.JSON(w, r, Response{Success: true, Data: users, Pagination: p})
	return nil
}
