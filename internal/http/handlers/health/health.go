package health

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/staffdesk/internal/http/response"
)

// Handle godoc
// @Summary Проверка живости
// @Tags Health
// @Produce json
// @Success 200 {object} response.MessageResponse
// @Router /health [get]
func Handle(w http.ResponseWriter, r *http.Request) error {
	render.JSON(w, r, response.Message("ok"))
	return nil
}
