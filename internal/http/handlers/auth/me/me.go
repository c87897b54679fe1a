// Package me отдаёт профиль текущего пользователя.
package me

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/staffdesk/internal/http/middlewarectx"
	"github.com/magabrotheeeer/staffdesk/internal/http/response"
)

// Handle godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.DataResponse{data=models.User}
// @Failure 401 {object} response.ErrorResponse "Нет или неверный токен"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /auth/me [get]
func Handle(w http.ResponseWriter, r *http.Request) error {
	user, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		return errors.New("handlers.auth.me: user missing in context")
	}
	render.JSON(w, r, response.Data(user))
	return nil
}
