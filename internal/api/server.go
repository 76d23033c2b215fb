// Package api exposes the record store as a REST API. Handlers validate
// input shape, enforce authorization policy, and delegate to the store;
// each logical action maps to exactly one store operation plus any domain
// uniqueness pre-checks.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"nutriapi/internal/store"
)

// Server holds the REST handlers and their dependencies
type Server struct {
	store     *store.Store
	jwtSecret []byte
	tokenTTL  time.Duration
	router    *mux.Router
}

// NewServer creates a server and registers all routes
func NewServer(st *store.Store, jwtSecret string, tokenTTL time.Duration) *Server {
	s := &Server{
		store:     st,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
	s.routes()
	return s
}

// Handler returns the router wrapped with recovery and CORS middleware
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedOrigins([]string{"*"}),
	)
	return handlers.RecoveryHandler()(cors(s.router))
}

func (s *Server) routes() {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	// Public routes.
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/products", s.handleListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", s.handleGetProduct).Methods(http.MethodGet)
	api.HandleFunc("/plans", s.handleListPlans).Methods(http.MethodGet)
	api.HandleFunc("/plans/{id}", s.handleGetPlan).Methods(http.MethodGet)

	// Authenticated routes.
	auth := api.NewRoute().Subrouter()
	auth.Use(s.authenticate)

	auth.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	auth.HandleFunc("/users/{id}", s.handleGetUser).Methods(http.MethodGet)
	auth.HandleFunc("/users/{id}", s.handleUpdateUser).Methods(http.MethodPut)
	auth.HandleFunc("/users/{id}", s.handleDeleteUser).Methods(http.MethodDelete)

	auth.HandleFunc("/products", s.handleCreateProduct).Methods(http.MethodPost)
	auth.HandleFunc("/products/{id}", s.handleUpdateProduct).Methods(http.MethodPut)
	auth.HandleFunc("/products/{id}", s.handleDeleteProduct).Methods(http.MethodDelete)

	auth.HandleFunc("/plans", s.handleCreatePlan).Methods(http.MethodPost)
	auth.HandleFunc("/plans/{id}", s.handleUpdatePlan).Methods(http.MethodPut)
	auth.HandleFunc("/plans/{id}", s.handleDeletePlan).Methods(http.MethodDelete)

	auth.HandleFunc("/appointments", s.handleListAppointments).Methods(http.MethodGet)
	auth.HandleFunc("/appointments", s.handleCreateAppointment).Methods(http.MethodPost)
	auth.HandleFunc("/appointments/{id}", s.handleGetAppointment).Methods(http.MethodGet)
	auth.HandleFunc("/appointments/{id}/status", s.handleAppointmentStatus).Methods(http.MethodPatch)
	auth.HandleFunc("/appointments/{id}", s.handleDeleteAppointment).Methods(http.MethodDelete)

	auth.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet)
	auth.HandleFunc("/orders", s.handleCreateOrder).Methods(http.MethodPost)
	auth.HandleFunc("/orders/{id}", s.handleGetOrder).Methods(http.MethodGet)
	auth.HandleFunc("/orders/{id}/status", s.handleOrderStatus).Methods(http.MethodPatch)

	s.router = r
}
