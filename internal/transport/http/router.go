package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/videotube-accounts/internal/config"
	"github.com/pribylovaa/videotube-accounts/internal/service"
	"github.com/pribylovaa/videotube-accounts/internal/transport/http/handlers"
	"github.com/pribylovaa/videotube-accounts/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
//
// Порядок middleware (внешний -> внутренний): Recover, RequestID, Logging,
// Metrics, Timeout. Гейт авторизации навешивается только на защищённую
// подгруппу маршрутов.
func NewRouter(svc *service.Service, cfg *config.Config, opts Options) http.Handler {
	root := chi.NewRouter()

	root.Use(
		middleware.Recover(),
		middleware.RequestID(), // до логирования: request_id попадает в каждый лог-вызов
		middleware.Logging(opts.Logger),
		middleware.Metrics(),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	h := handlers.New(svc, cfg)

	root.Route("/api/v1/users", func(r chi.Router) {
		// Публичные.
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh-token", h.RefreshToken)

		// За гейтом авторизации.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(svc))

			r.Post("/logout", h.Logout)
			r.Post("/change-password", h.ChangePassword)
			r.Get("/current-user", h.CurrentUser)
			r.Patch("/update-account", h.UpdateAccount)

			r.Post("/avatar/presign", h.PresignAvatarUpload)
			r.Post("/avatar/confirm", h.ConfirmAvatarUpload)
			r.Post("/cover/presign", h.PresignCoverUpload)
			r.Post("/cover/confirm", h.ConfirmCoverUpload)
		})
	})

	return root
}
