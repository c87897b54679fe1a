// Package list отдаёт реестр эндпоинтов по модулям.
package list

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/staffdesk/internal/http/response"
	"github.com/magabrotheeeer/staffdesk/internal/permissions"
)

// Registry — источник списка модулей.
type Registry interface {
	Modules() []permissions.Module
}

// Handler обрабатывает GET /permissions.
type Handler struct {
	registry Registry
}

// New создает Handler.
func New(registry Registry) *Handler {
	return &Handler{registry: registry}
}

// Handle godoc
// @Summary Реестр эндпоинтов
// @Tags Permissions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.DataResponse{data=[]permissions.Module}
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /permissions [get]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	render.JSON(w, r, response.Data(h.registry.Modules()))
	return nil
}
