// response стандартизирует формат ответов HTTP-слоя.
//
// Успех:   {"success": true,  "data": ..., "message": "..."}
// Ошибка:  {"success": false, "message": "...", "errors": []}
//
// Тела ошибок не содержат внутренних деталей: подробности — только в логах.
package response

import (
	"encoding/json"
	"net/http"
)

// Envelope — корневой объект успешного ответа.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorEnvelope — корневой объект ответа об ошибке.
type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// OK пишет успешный ответ с нужным статусом.
func OK(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Error пишет ответ об ошибке с безопасным сообщением.
func Error(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Success: false,
		Message: message,
		Errors:  []string{},
	})
}
