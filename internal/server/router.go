package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitr/internal/auth"
	"github.com/mmynk/splitr/internal/middleware"
	"github.com/mmynk/splitr/internal/service"
	"github.com/mmynk/splitr/internal/storage"
)

// NewRouter wires the service layer into an HTTP router. Auth routes and
// operational endpoints are public; everything else requires a valid
// bearer token.
func NewRouter(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Metrics(routeName))

	authHandler := NewAuthHandler(service.NewAuthService(authenticator, jwtManager, store))
	expenseHandler := NewExpenseHandler(service.NewExpenseService(store))
	settlementHandler := NewSettlementHandler(service.NewSettlementService(store))
	groupHandler := NewGroupHandler(service.NewGroupService(store))

	// Public endpoints
	router.HandleFunc("/api/health", checkHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")

	// Everything below requires authentication
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequireAuth(jwtManager))

	api.HandleFunc("/me", authHandler.GetCurrentUser).Methods("GET")

	api.HandleFunc("/expenses", expenseHandler.CreateExpense).Methods("POST")
	api.HandleFunc("/expenses/preview", expenseHandler.PreviewSplits).Methods("POST")
	api.HandleFunc("/expenses/{expenseId}", expenseHandler.DeleteExpense).Methods("DELETE")

	api.HandleFunc("/balances/users/{userId}", expenseHandler.GetPairBalance).Methods("GET")

	api.HandleFunc("/settlements", settlementHandler.CreateSettlement).Methods("POST")
	api.HandleFunc("/settlements/context", settlementHandler.GetSettlementContext).Methods("GET")

	api.HandleFunc("/groups", groupHandler.CreateGroup).Methods("POST")
	api.HandleFunc("/groups/{groupId}/balances", groupHandler.GetGroupBalances).Methods("GET")

	api.HandleFunc("/contacts", groupHandler.ListContacts).Methods("GET")

	return router
}

func checkHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// routeName returns the registered path template so metric labels stay
// bounded regardless of path parameter values.
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
