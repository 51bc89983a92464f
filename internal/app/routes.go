package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/statsbudsjett/statsbudsjett/internal/rest"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Public budget explorer
	years := r.PathPrefix("/api/years").Subrouter()
	years.Use(deps.RateLimiter.Middleware)
	years.HandleFunc("/{year:[0-9]+}/resolve", deps.ExplorerHandler.Resolve).Methods("GET")
	years.HandleFunc("/{year:[0-9]+}/aggregate", deps.ExplorerHandler.Aggregate).Methods("GET")
	years.HandleFunc("/{year:[0-9]+}/drilldown", deps.ExplorerHandler.Drilldown).Methods("POST")
	years.HandleFunc("/{year:[0-9]+}/keyfigures", deps.ExplorerHandler.KeyFigures).Methods("GET")
	years.HandleFunc("/{year:[0-9]+}/{side}/areas/{areaNumber}", deps.ExplorerHandler.Area).Methods("GET")

	// CMS
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(UserMiddleware(deps.AuthTokenValidator, deps.UserService))

	admin.HandleFunc("/users", deps.UserHandler.CreateUser).Methods("POST")
	admin.HandleFunc("/users", deps.UserHandler.ListUsers).Methods("GET")
	admin.HandleFunc("/users/current", deps.UserHandler.CurrentUser).Methods("GET")
	admin.HandleFunc("/users/{userId}/role", deps.UserHandler.UpdateRole).Methods("PUT")

	admin.HandleFunc("/fiscalyears", deps.PublishingHandler.ListYears).Methods("GET")
	admin.HandleFunc("/fiscalyears", deps.PublishingHandler.CreateYear).Methods("POST")
	admin.HandleFunc("/fiscalyears/{id}", deps.PublishingHandler.GetYear).Methods("GET")
	admin.HandleFunc("/fiscalyears/{id}/status", deps.PublishingHandler.UpdateStatus).Methods("PUT")
	admin.HandleFunc("/fiscalyears/{id}/revisions", deps.PublishingHandler.ListRevisions).Methods("GET")

	admin.HandleFunc("/fiscalyears/{id}/keyfigures", deps.KeyFigureHandler.List).Methods("GET")
	admin.HandleFunc("/fiscalyears/{id}/keyfigures", deps.KeyFigureHandler.Create).Methods("POST")
	admin.HandleFunc("/fiscalyears/{id}/keyfigures/revisions", deps.KeyFigureHandler.ListRevisions).Methods("GET")
	admin.HandleFunc("/keyfigures/{figureId}", deps.KeyFigureHandler.Update).Methods("PUT")
	admin.HandleFunc("/keyfigures/{figureId}", deps.KeyFigureHandler.Delete).Methods("DELETE")

	// Scheduled publication trigger
	r.HandleFunc("/api/cron/publish", deps.CronHandler.PublishDue).Methods("GET", "POST")
}
