package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/rs/cors"

	"cryptotracker/src/api/controllers"
	"cryptotracker/src/api/handlers"
	"cryptotracker/src/config"
	"cryptotracker/src/utils"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler

	cfg *config.Config
}

func NewServer(cfg *config.Config, controller *controllers.Controller) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handlers.NewHandler(controller),
		cfg:     cfg,
	}
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.cfg.Service.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	s.Router.Use(c.Handler)

	s.Router.Get("/alive", handlers.Healthcheck)

	tokenAuth := s.Handler.Controller.TokenAuth

	s.Router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.Handler.Register)
		r.Post("/login", s.Handler.Login)
		r.Post("/forgot-password", s.Handler.ForgotPassword)
		r.Post("/reset-password", s.Handler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(s.Handler.Authenticator)
			r.Get("/me", s.Handler.Me)
		})
	})

	s.Router.Route("/api/crypto", func(r chi.Router) {
		r.Get("/", s.Handler.GetAllCryptos)
		r.Get("/{symbol}", s.Handler.GetCryptoBySymbol)
		r.Get("/{symbol}/history", s.Handler.GetPriceHistory)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(s.Handler.Authenticator)
			r.Post("/", s.Handler.CreateCrypto)
			r.Post("/refresh", s.Handler.RefreshPrices)
		})
	})

	s.Router.Route("/api/portfolio", func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(s.Handler.Authenticator)

		r.Get("/", s.Handler.GetPortfolio)
		r.Post("/", s.Handler.AddToPortfolio)
		r.Get("/summary", s.Handler.GetPortfolioSummary)
		r.Put("/{id}", s.Handler.UpdatePortfolioEntry)
		r.Delete("/{id}", s.Handler.DeletePortfolioEntry)
	})

	s.Router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteError(w, utils.NotFound("Route not found"))
	})
}

func NewHTTPServer(server *Server) *http.Server {
	port := server.cfg.Service.Port
	if port == "" {
		port = "8000"
	}
	return &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		Handler:      server,
	}
}
