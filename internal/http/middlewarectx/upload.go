package middlewarectx

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/magabrotheeeer/staffdesk/internal/http/pipeline"
	"github.com/magabrotheeeer/staffdesk/internal/lib/httperr"
	"github.com/magabrotheeeer/staffdesk/internal/models"
)

// MaxFileSize — предельный размер одного файла.
const MaxFileSize = 50 << 20

const (
	uploadRejected  = "Only jpeg, png, jpg, avif, webp, pdf files are allowed. Max size 50 MB."
	multipartMemory = 32 << 20
)

var allowedTypes = regexp.MustCompile(`jpeg|png|jpg|avif|webp|pdf`)

// Uploads принимает до maxFiles файлов из поля field multipart-формы.
// И расширение, и MIME-тип должны быть из разрешённого списка. Если клиент
// не указал тип или прислал application/octet-stream, тип определяется по
// содержимому. Запрос без multipart-тела проходит дальше без файлов.
func Uploads(field string, maxFiles int) pipeline.Step {
	return func(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
		const op = "middlewarectx.Uploads"

		r.Body = http.MaxBytesReader(w, r.Body, int64(maxFiles)*MaxFileSize+(1<<20))
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				return nil, httperr.Unprocessable(uploadRejected)
			case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
				return r, nil
			default:
				return nil, fmt.Errorf("%s: %w: %w", op, httperr.BadRequest("Invalid multipart form"), err)
			}
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		headers := r.MultipartForm.File[field]
		if len(headers) > maxFiles {
			return nil, httperr.Unprocessable(fmt.Sprintf("Too many files. Max %d allowed.", maxFiles))
		}

		files := make([]models.File, 0, len(headers))
		for _, fh := range headers {
			f, err := readPart(fh)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			files = append(files, f)
		}

		return r.WithContext(WithFiles(r.Context(), files)), nil
	}
}

func readPart(fh *multipart.FileHeader) (models.File, error) {
	if fh.Size > MaxFileSize {
		return models.File{}, httperr.Unprocessable(uploadRejected)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
	if !allowedTypes.MatchString(ext) {
		return models.File{}, httperr.Unprocessable(uploadRejected)
	}

	src, err := fh.Open()
	if err != nil {
		return models.File{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		return models.File{}, err
	}
	if len(data) > MaxFileSize {
		return models.File{}, httperr.Unprocessable(uploadRejected)
	}

	mimeType := mediaType(fh.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mediaType(mimetype.Detect(data).String())
	}
	if !allowedTypes.MatchString(mimeType) {
		return models.File{}, httperr.Unprocessable(uploadRejected)
	}

	return models.File{Name: fh.Filename, MIMEType: mimeType, Data: data}, nil
}

func mediaType(v string) string {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return ""
	}
	return mt
}
