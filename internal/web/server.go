package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/ecinar/route-tracker/internal/auth"
	"github.com/ecinar/route-tracker/internal/customer"
	"github.com/ecinar/route-tracker/internal/logging"
	"github.com/ecinar/route-tracker/internal/user"
	"github.com/ecinar/route-tracker/internal/visit"
)

// Server wires the HTTP routes to the domain services.
type Server struct {
	users     *user.Repository
	customers *customer.Repository
	visits    *visit.Service
	tokens    *auth.TokenService
}

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
}

// NewServer builds the full API handler.
func NewServer(users *user.Repository, customers *customer.Repository, visits *visit.Service, tokens *auth.TokenService, opts Options) http.Handler {
	s := &Server{
		users:     users,
		customers: customers,
		visits:    visits,
		tokens:    tokens,
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.RequireAuth(tokens))

	api.HandleFunc("/customers", s.handleListCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers", s.handleCreateCustomer).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}", s.handleGetCustomer).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", s.handleUpdateCustomer).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id}", s.handleDeleteCustomer).Methods(http.MethodDelete)

	api.HandleFunc("/visits", s.handleListVisits).Methods(http.MethodGet)
	api.HandleFunc("/visits", s.handlePlanVisit).Methods(http.MethodPost)
	api.HandleFunc("/visits/today", s.handleTodayVisits).Methods(http.MethodGet)
	api.HandleFunc("/visits/{id}", s.handleGetVisit).Methods(http.MethodGet)
	api.HandleFunc("/visits/{id}", s.handleUpdateVisit).Methods(http.MethodPut)
	api.HandleFunc("/visits/{id}", s.handleDeleteVisit).Methods(http.MethodDelete)
	api.HandleFunc("/visits/{id}/start", s.handleStartVisit).Methods(http.MethodPost)
	api.HandleFunc("/visits/{id}/complete", s.handleCompleteVisit).Methods(http.MethodPost)
	api.HandleFunc("/visits/{id}/cancel", s.handleCancelVisit).Methods(http.MethodPost)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return c.Handler(logging.RequestLogger(r))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
