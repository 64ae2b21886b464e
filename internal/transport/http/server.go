package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"rich-trivia-service/internal/app"
	"rich-trivia-service/internal/auth"
)

// Server wires the HTTP surface: auth endpoints, the profile view and the
// websocket game endpoint.
type Server struct {
	router *chi.Mux
	games  *app.GameService
	auth   *auth.Service
	ws     *WSHandler
}

func NewServer(games *app.GameService, authService *auth.Service) *Server {
	s := &Server{
		games: games,
		auth:  authService,
		ws:    NewWSHandler(games, authService),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		// The websocket stays outside this group; a timeout would cut games short.
		r.Use(middleware.Timeout(15 * time.Second))
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/profile", s.handleProfile)
	})

	r.Get("/ws", s.ws.ServeWS)

	s.router = r
}
