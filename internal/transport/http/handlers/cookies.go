package handlers

import (
	"net/http"
	"time"

	"github.com/pribylovaa/videotube-accounts/internal/models"
	"github.com/pribylovaa/videotube-accounts/internal/transport/http/middleware"
)

// setTokenCookies выставляет пару токенов в HttpOnly-куки.
// Срок жизни кук равен TTL соответствующего токена.
func (h *Handlers) setTokenCookies(w http.ResponseWriter, pair *models.TokenPair) {
	http.SetCookie(w, h.tokenCookie(middleware.AccessTokenCookie, pair.AccessToken, h.cfg.Auth.AccessTokenTTL))
	http.SetCookie(w, h.tokenCookie(middleware.RefreshTokenCookie, pair.RefreshToken, h.cfg.Auth.RefreshTokenTTL))
}

// clearTokenCookies сбрасывает обе токен-куки (MaxAge=-1).
func (h *Handlers) clearTokenCookies(w http.ResponseWriter) {
	access := h.tokenCookie(middleware.AccessTokenCookie, "", 0)
	access.MaxAge = -1
	refresh := h.tokenCookie(middleware.RefreshTokenCookie, "", 0)
	refresh.MaxAge = -1

	http.SetCookie(w, access)
	http.SetCookie(w, refresh)
}

func (h *Handlers) tokenCookie(name, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.cfg.Cookies.Domain,
		HttpOnly: true,
		Secure:   h.cfg.Cookies.Secure(),
		SameSite: http.SameSiteLaxMode,
	}

	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}

	return c
}
