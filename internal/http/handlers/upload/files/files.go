// Package files принимает до десяти файлов из поля формы "files".
package files

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

// Response — адреса успешно сохранённых файлов в порядке загрузки.
type Response struct {
	Success   bool     `json:"success" example:"true"`
	FilePaths []string `json:"file_paths"`
}

// Service обрабатывает пакет файлов.
type Service interface {
	UploadMany(ctx context.Context, userID string, files []models.File) ([]string, error)
}

// Handler обрабатывает POST /upload/files.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Handle godoc
// @Summary Загрузить несколько файлов
// @Description Файлы обрабатываются параллельно, неудачные пропускаются.
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "До 10 файлов"
// @Success 201 {object} Response
// @Failure 400 {object} response.ErrorResponse "Ни один файл не загружен"
// @Failure 404 {object} response.ErrorResponse "Файлы не переданы"
// @Failure 422 {object} response.ErrorResponse "Недопустимый тип, размер или слишком много файлов"
// @Router /upload/files [post]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.upload.files"

	user, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		return errors.New(op + ": user missing in context")
	}

	received := middlewarectx.FilesFrom(r.Context())
	locations, err := h.service.UploadMany(r.Context(), user.ID, received)
	if err != nil {
		return err
	}

	h.log.Info("files uploaded",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("received", len(received)),
		slog.Int("stored", len(locations)),
	)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{Success: true, FilePaths: locations})
	return nil
}
