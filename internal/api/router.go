package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mindweave/engine/internal/api/handlers"
	mw "github.com/mindweave/engine/internal/api/middleware"
)

type Dependencies struct {
	HMACSecret      []byte
	AuthHandler     *handlers.AuthHandler
	UsersHandler    *handlers.UsersHandler
	MemosHandler    *handlers.MemosHandler
	ProjectsHandler *handlers.ProjectsHandler

	// StatusWS is the presence websocket endpoint; it authenticates itself
	// via query token and sits outside the API middleware chain.
	StatusWS http.HandlerFunc

	// AssetsDir serves uploaded files (profile images) when non-empty.
	AssetsDir string
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	// Health endpoints
	hh := handlers.NewHealthHandler()
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/docs/doc.json"),
	))

	if dep.StatusWS != nil {
		r.Get("/ws/status", dep.StatusWS)
	}
	if dep.AssetsDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(dep.AssetsDir))))
	}

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/logout", dep.AuthHandler.Logout)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))

			protected.Get("/auth/me", dep.AuthHandler.Me)

			// Profile
			protected.Route("/users/me", func(ur chi.Router) {
				ur.Put("/", dep.UsersHandler.UpdateProfile)
				ur.Post("/image", dep.UsersHandler.UploadProfileImage)
			})

			// Friends
			protected.Route("/friends", func(fr chi.Router) {
				fr.Get("/", dep.UsersHandler.ListFriends)
				fr.Get("/search", dep.UsersHandler.SearchFriend)
				fr.Post("/requests", dep.UsersHandler.RequestFriend)
				fr.Get("/requests", dep.UsersHandler.ListFriendRequests)
				fr.Post("/requests/{id}", dep.UsersHandler.RespondFriendRequest)
				fr.Delete("/{id}", dep.UsersHandler.RemoveFriend)
			})

			// Memos
			protected.Route("/memos", func(mr chi.Router) {
				mr.Get("/", dep.MemosHandler.List)
				mr.Post("/", dep.MemosHandler.Create)
				mr.Get("/{id}", dep.MemosHandler.Get)
				mr.Put("/{id}", dep.MemosHandler.Update)
				mr.Delete("/{id}", dep.MemosHandler.Delete)
			})

			// Projects, chat and the mind map
			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Get("/{id}", dep.ProjectsHandler.Get)
				pr.Put("/{id}", dep.ProjectsHandler.Update)
				pr.Delete("/{id}", dep.ProjectsHandler.Delete)

				pr.Post("/{id}/members", dep.ProjectsHandler.AddMember)

				pr.Get("/{id}/chats", dep.ProjectsHandler.ListChat)
				pr.Post("/{id}/chats", dep.ProjectsHandler.PostChat)

				pr.Post("/{id}/generate", dep.ProjectsHandler.Generate)
				pr.Get("/{id}/nodes", dep.ProjectsHandler.ListNodes)
				pr.Patch("/{id}/nodes/{nodeID}", dep.ProjectsHandler.UpdateNode)
				pr.Get("/{id}/recommend", dep.ProjectsHandler.Recommend)
			})
		})
	})

	return r
}
