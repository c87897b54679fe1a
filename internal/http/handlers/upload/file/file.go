// Package file принимает один файл из поля формы "file".
package file

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

// Response — адрес сохранённого файла.
type Response struct {
	Success  bool   `json:"success" example:"true"`
	FilePath string `json:"filePath"`
}

// Service обрабатывает и сохраняет файл.
type Service interface {
	UploadOne(ctx context.Context, userID string, f *models.File) (string, error)
}

// Handler обрабатывает POST /upload/file.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Handle godoc
// @Summary Загрузить файл
// @Description Изображения перекодируются в JPEG, PDF сжимаются. До 50 МБ.
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "jpeg, png, jpg, avif, webp или pdf"
// @Success 201 {object} Response
// @Failure 400 {object} response.ErrorResponse "Файл не удалось обработать"
// @Failure 404 {object} response.ErrorResponse "Файл не передан"
// @Failure 422 {object} response.ErrorResponse "Недопустимый тип или размер"
// @Failure 504 {object} response.ErrorResponse "Сжатие PDF не уложилось во время"
// @Router /upload/file [post]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.upload.file"

	user, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		return errors.New(op + ": user missing in context")
	}

	var f *models.File
	if files := middlewarectx.FilesFrom(r.Context()); len(files) > 0 {
		f = &files[0]
	}

	location, err := h.service.UploadOne(r.Context(), user.ID, f)
	if err != nil {
		return err
	}

	h.log.Info("file uploaded",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("location", location),
	)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{Success: true, FilePath: location})
	return nil
}
