package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sailesh298-rgb/EMAIL/config"
	"github.com/sailesh298-rgb/EMAIL/services"
)

// NewRouter wires services and routes into the API router. The store handle
// is injected here rather than held globally so tests can run the full API
// against a throwaway database.
func NewRouter(cfg *config.Config, db *sql.DB, logger hclog.Logger) *mux.Router {
	accounts := services.NewAccountService(cfg, db, logger)
	mailboxes := services.NewMailboxService(db, accounts, logger)

	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/api/auth/login", LoginHandler(accounts, cfg, logger)).Methods("POST")
	r.HandleFunc("/api/accounts/create", CreateAccountHandler(accounts, logger)).Methods("POST")
	r.HandleFunc("/api/accounts/bulk-create", BulkCreateHandler(accounts)).Methods("POST")

	// Authenticated routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(AuthMiddleware(accounts, []byte(cfg.JWTSecret), logger))
	api.HandleFunc("/emails/send", SendMailHandler(mailboxes, db, cfg, logger)).Methods("POST")
	api.HandleFunc("/emails/draft", SaveDraftHandler(mailboxes)).Methods("POST")
	api.HandleFunc("/emails/message/{id}", GetEmailHandler(mailboxes)).Methods("GET")
	api.HandleFunc("/emails/message/{id}/move", MoveEmailHandler(mailboxes)).Methods("PUT")
	api.HandleFunc("/emails/message/{id}", DeleteEmailHandler(mailboxes)).Methods("DELETE")
	api.HandleFunc("/emails/{folder}", ListEmailsHandler(mailboxes)).Methods("GET")
	api.HandleFunc("/account/password", ChangePasswordHandler(accounts)).Methods("PUT")
	api.HandleFunc("/account/stats", StatsHandler(mailboxes)).Methods("GET")

	// Operational endpoints
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		successResponse(w, "Email Service API is running", map[string]string{"version": "1.0.0"})
	}).Methods("GET")

	return r
}
