package handlers

import (
	"io"
	"net/http"

	"github.com/pribylovaa/videotube-accounts/internal/models"
	"github.com/pribylovaa/videotube-accounts/internal/transport/http/middleware"
	"github.com/pribylovaa/videotube-accounts/internal/transport/http/response"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// tokenPairResponse дублирует токены в теле ответа для клиентов без кук.
type tokenPairResponse struct {
	Account      *models.AccountView `json:"account,omitempty"`
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken"`
}

// Login — POST /api/v1/users/login.
// Успех: пара токенов в HttpOnly-куках и, продублированная, в теле вместе
// с аккаунтом.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, account, err := h.service.Login(r.Context(), in.Login, in.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setTokenCookies(w, pair)
	response.OK(w, http.StatusOK, tokenPairResponse{
		Account:      account,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "logged in successfully")
}

// RefreshToken — POST /api/v1/users/refresh-token.
// Refresh-токен берётся из куки refreshToken; для клиентов без кук
// принимаем его в теле запроса. Успешная ротация перевыставляет обе куки.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(middleware.RefreshTokenCookie); err == nil {
		token = c.Value
	}

	if token == "" {
		var in refreshRequest
		if err := decodeStrict(r, &in); err != nil && err != io.EOF {
			response.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
		token = in.RefreshToken
	}

	if token == "" {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	pair, _, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setTokenCookies(w, pair)
	response.OK(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "token refreshed successfully")
}

// Logout — POST /api/v1/users/logout (за гейтом).
// Куки сбрасываются безусловно; повторный logout так же возвращает 200.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.Logout(r.Context(), account.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	h.clearTokenCookies(w)
	response.OK(w, http.StatusOK, nil, "logged out successfully")
}

// ChangePassword — POST /api/v1/users/change-password (за гейтом).
// Успешная смена пароля отзывает refresh-токен: остальные сессии
// аккаунта не смогут обновиться. Текущие куки тоже сбрасываем.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in changePasswordRequest
	if err := decodeStrict(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ChangePassword(r.Context(), account.ID, in.OldPassword, in.NewPassword); err != nil {
		writeChangePasswordError(w, err)
		return
	}

	h.clearTokenCookies(w)
	response.OK(w, http.StatusOK, nil, "password changed successfully")
}
