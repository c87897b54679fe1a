// Package response содержит типы JSON‑ответов API. Успешный ответ всегда
// несёт success: true, ответ с ошибкой несёт success: false и объект error.
package response

import "github.com/magabrotheeeer/staffdesk/internal/lib/httperr"

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Success bool          `json:"success" example:"false"`
	Error   httperr.Error `json:"error"`
}

// MessageResponse — успешный ответ с текстовым сообщением.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"User created successfully"`
}

// DataResponse — успешный ответ с данными.
type DataResponse struct {
	Success bool `json:"success" example:"true"`
	Data    any  `json:"data"`
}

// Error формирует тело ответа из нормализованной ошибки.
func Error(e *httperr.Error) ErrorResponse {
	return ErrorResponse{Success: false, Error: *e}
}

// Message возвращает успешный ответ с сообщением.
func Message(msg string) MessageResponse {
	return MessageResponse{Success: true, Message: msg}
}

// Data возвращает успешный ответ с данными.
func Data(data any) DataResponse {
	return DataResponse{Success: true, Data: data}
}
