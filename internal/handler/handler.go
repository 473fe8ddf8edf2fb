// Package handler exposes the service layer over HTTP/JSON with chi.
package handler

import (
	"net/http"

	"github.com/Tetsu-is/social-graph/internal/auth"
	"github.com/Tetsu-is/social-graph/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

func New(svc *service.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger.Named("http")}
}

// Routes builds the router. allowedOrigins feeds the CORS policy.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	requireAuth := auth.Middleware(h.svc, writeError)
	optionalAuth := auth.OptionalMiddleware(h.svc)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.With(requireAuth).Post("/logout", h.logout)
		r.Post("/password/reset", h.requestPasswordReset)
		r.Get("/password/reset/{token}", h.checkPasswordReset)
		r.Post("/password/reset/{token}", h.completePasswordReset)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.With(requireAuth).Delete("/me", h.deleteAccount)

		r.Route("/{accountID}", func(r chi.Router) {
			r.With(optionalAuth).Get("/", h.viewProfile)
			r.Get("/followers", h.followers)
			r.Get("/following", h.following)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Put("/profile", h.editProfile)
				r.Post("/follow", h.follow)
				r.Post("/unfollow", h.unfollow)
			})
		})
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.listPosts)
		r.With(requireAuth).Post("/", h.createPost)

		r.Route("/{postID}", func(r chi.Router) {
			r.With(optionalAuth).Get("/{slug}", h.postDetail)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Put("/", h.updatePost)
				r.Delete("/", h.deletePost)
				r.Post("/comments", h.addComment)
				r.Post("/comments/{commentID}/replies", h.addReply)
				r.Post("/like", h.toggleLike)
			})
		})
	})

	return r
}
