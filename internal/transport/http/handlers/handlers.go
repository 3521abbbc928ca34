// handlers содержит HTTP-обработчики accounts-service.
//
// Все ответы завёрнуты в единый конверт (см. пакет response); ошибки
// сервиса транслируются в HTTP-статусы в writeServiceError.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/videotube-accounts/internal/config"
	"github.com/pribylovaa/videotube-accounts/internal/service"
	"github.com/pribylovaa/videotube-accounts/internal/transport/http/response"
)

// Handlers агрегирует зависимости обработчиков.
type Handlers struct {
	service *service.Service
	cfg     *config.Config
}

func New(s *service.Service, cfg *config.Config) *Handlers {
	return &Handlers{service: s, cfg: cfg}
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// writeServiceError транслирует ошибки сервисного слоя в HTTP-ответ.
//
// Сообщения намеренно нейтральные: для логина не различаем "нет такого
// аккаунта" и "неверный пароль", для 500 не раскрываем внутренности.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	// Для 400 наружу уходит текст самой сентинельной ошибки, без цепочки
	// обёрток с внутренними op.
	case errors.Is(err, service.ErrEmptyField):
		response.Error(w, http.StatusBadRequest, service.ErrEmptyField.Error())
	case errors.Is(err, service.ErrInvalidEmail):
		response.Error(w, http.StatusBadRequest, service.ErrInvalidEmail.Error())
	case errors.Is(err, service.ErrInvalidUsername):
		response.Error(w, http.StatusBadRequest, service.ErrInvalidUsername.Error())
	case errors.Is(err, service.ErrWeakPassword):
		response.Error(w, http.StatusBadRequest, service.ErrWeakPassword.Error())
	case errors.Is(err, service.ErrEmptyPassword):
		response.Error(w, http.StatusBadRequest, service.ErrEmptyPassword.Error())
	case errors.Is(err, service.ErrInvalidMedia):
		response.Error(w, http.StatusBadRequest, service.ErrInvalidMedia.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrNotFound):
		response.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenReused),
		errors.Is(err, service.ErrInvalidToken):
		response.Error(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrAccountTaken):
		response.Error(w, http.StatusConflict, "username or email already taken")
	case errors.Is(err, service.ErrMediaUnavailable):
		response.Error(w, http.StatusServiceUnavailable, "media storage unavailable")
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeChangePasswordError — как writeServiceError, но неверный старый пароль
// отдаёт 400: пользователь уже аутентифицирован access-токеном, это ошибка
// ввода, а не авторизации.
func writeChangePasswordError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		response.Error(w, http.StatusBadRequest, "incorrect old password")
		return
	}

	writeServiceError(w, err)
}
