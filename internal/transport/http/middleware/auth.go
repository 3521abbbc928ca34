package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/videotube-accounts/internal/models"
	"github.com/pribylovaa/videotube-accounts/internal/pkg/log"
	"github.com/pribylovaa/videotube-accounts/internal/transport/http/response"
)

// Имена кук, в которых транспорт носит токены.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

type accountCtxKey struct{}

// Authenticator проверяет access-токен и возвращает связанный аккаунт.
//
// Ошибки валидации токена (просроченный, повреждённый, аккаунт удалён)
// схлопываются гейтом в единый ответ 401 — клиенту детали не раскрываются.
type Authenticator interface {
	AuthenticateAccess(ctx context.Context, token string) (*models.AccountView, error)
}

// Auth — гейт авторизации: извлекает access-токен из запроса, проверяет его
// через Authenticator и кладёт аккаунт в контекст запроса.
//
// Токен берётся сначала из куки accessToken, затем из заголовка
// Authorization: Bearer. Запрос без валидного токена не доходит до
// обработчика и получает 401 с нейтральным сообщением.
func Auth(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				response.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			account, err := a.AuthenticateAccess(r.Context(), token)
			if err != nil {
				log.From(r.Context()).Debug("auth_gate_rejected",
					"err", err.Error(),
				)
				response.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), accountCtxKey{}, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountFrom возвращает аккаунт, положенный гейтом Auth в контекст.
func AccountFrom(ctx context.Context) (*models.AccountView, bool) {
	account, ok := ctx.Value(accountCtxKey{}).(*models.AccountView)
	return account, ok
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ""
}
