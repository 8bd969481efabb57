package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/sailesh298-rgb/EMAIL/auth"
	"github.com/sailesh298-rgb/EMAIL/database"
	"github.com/sailesh298-rgb/EMAIL/services"
)

type contextKey string

const accountContextKey contextKey = "account"

// AuthMiddleware resolves the Authorization bearer token to an account before
// any mailbox or account operation runs. A token is only honoured while the
// account it references still exists.
func AuthMiddleware(accounts *services.AccountService, secret []byte, logger hclog.Logger) mux.MiddlewareFunc {
	log := logger.Named("auth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				errorResponse(w, "Invalid authentication", http.StatusUnauthorized)
				return
			}

			email, err := auth.ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				errorResponse(w, "Invalid authentication", http.StatusUnauthorized)
				return
			}

			acct, err := accounts.Get(email)
			if err != nil {
				log.Debug("token references unknown account", "email", email)
				errorResponse(w, "User not found", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), accountContextKey, acct)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accountFrom returns the authenticated account placed on the request context
// by AuthMiddleware.
func accountFrom(r *http.Request) *database.Account {
	acct, _ := r.Context().Value(accountContextKey).(*database.Account)
	return acct
}
