// Package httperr описывает единственный тип ошибки, который проходит через
// HTTP-конвейер: код статуса, короткую метку статуса и человекочитаемое сообщение.
package httperr

import (
	"errors"
	"net/http"
)

const defaultStatusMsg = "Internal Server Error"

// Error — ошибка с HTTP-статусом. Любой слой может её вернуть,
// терминальный обработчик превращает её в JSON-ответ.
type Error struct {
	StatusCode int    `json:"statusCode"`
	StatusMsg  string `json:"statusMsg"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.StatusMsg
}

// New создаёт ошибку с произвольным кодом. Метка статуса берётся из net/http.
func New(code int, message string) *Error {
	return &Error{
		StatusCode: code,
		StatusMsg:  http.StatusText(code),
		Message:    message,
	}
}

func BadRequest(message string) *Error      { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error    { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error       { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error        { return New(http.StatusNotFound, message) }
func Unprocessable(message string) *Error   { return New(http.StatusUnprocessableEntity, message) }
func TooManyRequests(message string) *Error { return New(http.StatusTooManyRequests, message) }
func Internal(message string) *Error        { return New(http.StatusInternalServerError, message) }
func GatewayTimeout(message string) *Error  { return New(http.StatusGatewayTimeout, message) }

// From приводит произвольную ошибку к *Error, пригодной для ответа клиенту.
//
// Некорректный код статуса превращается в 500, пустая метка берётся из
// http.StatusText, пустое сообщение заменяется меткой статуса. Ошибки,
// не являющиеся *Error, становятся 500 без раскрытия текста.
func From(err error) *Error {
	var e *Error
	if err == nil || !errors.As(err, &e) || e == nil {
		return &Error{
			StatusCode: http.StatusInternalServerError,
			StatusMsg:  defaultStatusMsg,
			Message:    defaultStatusMsg,
		}
	}

	out := *e
	if out.StatusCode < 100 || out.StatusCode > 599 {
		out.StatusCode = http.StatusInternalServerError
		out.StatusMsg = defaultStatusMsg
	}
	if out.StatusMsg == "" {
		out.StatusMsg = http.StatusText(out.StatusCode)
	}
	if out.StatusMsg == "" {
		out.StatusMsg = defaultStatusMsg
	}
	if out.Message == "" {
		out.Message = out.StatusMsg
	}
	return &out
}
