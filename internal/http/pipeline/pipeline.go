// Package pipeline связывает обработчики и middleware с единым каналом ошибок.
//
// Обработчики и шаги middleware не пишут ответ об ошибке сами: они возвращают
// error, а Pipeline передаёт её в Fail, который формирует JSON‑ответ.
// Паника внутри обработчика тоже превращается в ошибку.
package pipeline

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/staffdesk/internal/http/response"
	"github.com/magabrotheeeer/staffdesk/internal/lib/httperr"
	"github.com/magabrotheeeer/staffdesk/internal/lib/sl"
)

// Func — обработчик, возвращающий ошибку вместо записи ответа об ошибке.
type Func func(w http.ResponseWriter, r *http.Request) error

// Step — шаг middleware. Возвращает запрос для следующего звена
// (обычно с дополненным контекстом) либо ошибку.
type Step func(w http.ResponseWriter, r *http.Request) (*http.Request, error)

// Pipeline хранит логгер терминального обработчика ошибок.
type Pipeline struct {
	log *slog.Logger
}

// New создаёт Pipeline.
func New(log *slog.Logger) *Pipeline {
	return &Pipeline{log: log}
}

// Handle оборачивает Func в http.Handler. Ошибка или паника уходят в Fail.
func (p *Pipeline) Handle(fn Func) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := p.call(fn, w, r); err != nil {
			p.Fail(w, r, err)
		}
	})
}

// Guard превращает Step в chi middleware.
func (p *Pipeline) Guard(step Step) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var nextReq *http.Request
			err := p.call(func(w http.ResponseWriter, r *http.Request) error {
				var err error
				nextReq, err = step(w, r)
				return err
			}, w, r)
			if err != nil {
				p.Fail(w, r, err)
				return
			}
			if nextReq == nil {
				nextReq = r
			}
			next.ServeHTTP(w, nextReq)
		})
	}
}

func (p *Pipeline) call(fn Func, w http.ResponseWriter, r *http.Request) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err = fmt.Errorf("pipeline: recovered panic: %v", rec)
		}
	}()
	return fn(w, r)
}

// Fail — терминальный обработчик ошибок. Пишет {success:false, error:{...}}
// со статусом из ошибки. Сам никогда не паникует.
func (p *Pipeline) Fail(w http.ResponseWriter, r *http.Request, err error) {
	const op = "pipeline.Fail"

	e := httperr.From(err)
	log := p.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("status", e.StatusCode),
	)
	if err == nil {
		err = fmt.Errorf("nil error passed to %s", op)
	}
	if e.StatusCode >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Warn("request rejected", slog.String("message", e.Message))
	}

	render.Status(r, e.StatusCode)
	render.JSON(w, r, response.Error(e))
}
