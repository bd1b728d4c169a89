package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PaulSssar/yamdb-final/internal/middleware"
)

// Routes builds the /api/v1 router. The authenticate middleware resolves
// Bearer tokens; per-route guards decide what anonymous access means.
func (h *Handler) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authenticate)

	r.Get("/status", h.Status)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/token", h.TokenExchange)
	})

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", h.Me)
			r.Patch("/me", h.UpdateMe)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{username}", h.GetUserByUsername)
			r.Patch("/{username}", h.UpdateUserByUsername)
			r.Delete("/{username}", h.DeleteUserByUsername)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.With(middleware.RequireAdmin).Post("/", h.CreateCategory)
		r.With(middleware.RequireAdmin).Delete("/{slug}", h.DeleteCategory)
	})

	r.Route("/genres", func(r chi.Router) {
		r.Get("/", h.ListGenres)
		r.With(middleware.RequireAdmin).Post("/", h.CreateGenre)
		r.With(middleware.RequireAdmin).Delete("/{slug}", h.DeleteGenre)
	})

	r.Route("/titles", func(r chi.Router) {
		r.Get("/", h.ListTitles)
		r.With(middleware.RequireAdmin).Post("/", h.CreateTitle)

		r.Route("/{titleID}", func(r chi.Router) {
			r.Get("/", h.GetTitle)
			r.With(middleware.RequireAdmin).Patch("/", h.UpdateTitle)
			r.With(middleware.RequireAdmin).Delete("/", h.DeleteTitle)

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", h.ListReviews)
				r.With(middleware.RequireAuth).Post("/", h.CreateReview)

				r.Route("/{reviewID}", func(r chi.Router) {
					r.Get("/", h.GetReview)
					r.With(middleware.RequireAuth).Patch("/", h.UpdateReview)
					r.With(middleware.RequireAuth).Delete("/", h.DeleteReview)

					r.Route("/comments", func(r chi.Router) {
						r.Get("/", h.ListComments)
						r.With(middleware.RequireAuth).Post("/", h.CreateComment)

						r.Route("/{commentID}", func(r chi.Router) {
							r.Get("/", h.GetComment)
							r.With(middleware.RequireAuth).Patch("/", h.UpdateComment)
							r.With(middleware.RequireAuth).Delete("/", h.DeleteComment)
						})
					})
				})
			})
		})
	})

	return r
}
