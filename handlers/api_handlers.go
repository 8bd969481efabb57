package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"github.com/sailesh298-rgb/EMAIL/auth"
	"github.com/sailesh298-rgb/EMAIL/config"
	"github.com/sailesh298-rgb/EMAIL/services"
)

// LoginRequest struct for parsing the JSON payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BulkCreateRequest struct for parsing bulk account creation payloads.
type BulkCreateRequest struct {
	Accounts []services.NewAccount `json:"accounts"`
	Domain   string                `json:"domain"`
}

// PasswordChangeRequest struct for parsing password rotation payloads.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// LoginHandler authenticates an account and issues a bearer token.
func LoginHandler(accounts *services.AccountService, cfg *config.Config, logger hclog.Logger) http.HandlerFunc {
	log := logger.Named("handlers")
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			errorResponse(w, "Fields 'email' and 'password' are required.", http.StatusBadRequest)
			return
		}

		acct, err := accounts.Authenticate(req.Email, req.Password)
		if err != nil {
			serviceError(w, err)
			return
		}

		token, err := auth.NewToken([]byte(cfg.JWTSecret), acct.Email, cfg.TokenTTL)
		if err != nil {
			log.Error("failed to issue token", "email", acct.Email, "error", err)
			errorResponse(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		successResponse(w, "Login successful", map[string]interface{}{
			"access_token": token,
			"token_type":   "bearer",
			"account":      acct,
		})
	}
}

// CreateAccountHandler provisions a single email account.
func CreateAccountHandler(accounts *services.AccountService, logger hclog.Logger) http.HandlerFunc {
	log := logger.Named("handlers")
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.NewAccount
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			errorResponse(w, "Fields 'email' and 'password' are required.", http.StatusBadRequest)
			return
		}

		acct, err := accounts.Create(req.Email, req.Password, req.DisplayName)
		if err != nil {
			serviceError(w, err)
			return
		}

		log.Info("account created via API", "email", acct.Email)
		successResponse(w, "Account created successfully", acct)
	}
}

// BulkCreateHandler provisions many accounts at once. Per-account failures
// are reported in the response; they never fail the request.
func BulkCreateHandler(accounts *services.AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BulkCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		if len(req.Accounts) == 0 || req.Domain == "" {
			errorResponse(w, "Fields 'accounts' and 'domain' are required.", http.StatusBadRequest)
			return
		}

		result := accounts.BulkCreate(req.Accounts, req.Domain)
		successResponse(w, "Bulk account creation finished", result)
	}
}

// ChangePasswordHandler rotates the authenticated account's password.
func ChangePasswordHandler(accounts *services.AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct := accountFrom(r)

		var req PasswordChangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		if req.CurrentPassword == "" || req.NewPassword == "" {
			errorResponse(w, "Fields 'current_password' and 'new_password' are required.", http.StatusBadRequest)
			return
		}

		if err := accounts.ChangePassword(acct.Email, req.CurrentPassword, req.NewPassword); err != nil {
			serviceError(w, err)
			return
		}
		successResponse(w, "Password changed successfully", nil)
	}
}

// StatsHandler returns folder counts, unread count and storage metadata for
// the authenticated account.
func StatsHandler(mailboxes *services.MailboxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct := accountFrom(r)

		stats, err := mailboxes.GetStats(acct.Email)
		if err != nil {
			serviceError(w, err)
			return
		}
		successResponse(w, "Account statistics retrieved", stats)
	}
}
