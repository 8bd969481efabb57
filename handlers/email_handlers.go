package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/sailesh298-rgb/EMAIL/config"
	"github.com/sailesh298-rgb/EMAIL/services"
	"github.com/sailesh298-rgb/EMAIL/utils"
)

// SendMailRequest struct for parsing the JSON payload.
type SendMailRequest struct {
	To      []string `json:"to"`
	CC      []string `json:"cc,omitempty"`
	BCC     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// ListEmailsHandler returns one folder of the authenticated mailbox.
func ListEmailsHandler(mailboxes *services.MailboxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct := accountFrom(r)
		folder := mux.Vars(r)["folder"]

		limit := queryInt(r, "limit", 0)
		offset := queryInt(r, "offset", 0)

		emails, err := mailboxes.List(acct.Email, folder, limit, offset)
		if err != nil {
			serviceError(w, err)
			return
		}

		successResponse(w, "Emails retrieved successfully", map[string]interface{}{
			"emails": emails,
			"total":  len(emails),
		})
	}
}

// SendMailHandler delivers an email from the authenticated account.
func SendMailHandler(mailboxes *services.MailboxService, db *sql.DB, cfg *config.Config, logger hclog.Logger) http.HandlerFunc {
	log := logger.Named("handlers")
	return func(w http.ResponseWriter, r *http.Request) {
		acct := accountFrom(r)

		var req SendMailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		if len(req.To) == 0 {
			errorResponse(w, "Field 'to' is required.", http.StatusBadRequest)
			return
		}

		if cfg.DailySendLimit > 0 {
			currentCount, err := utils.DailySentCount(db, acct.Email)
			if err != nil {
				log.Error("failed to check daily send count", "account", acct.Email, "error", err)
				errorResponse(w, "Internal server error checking mail limit", http.StatusInternalServerError)
				return
			}
			if currentCount >= cfg.DailySendLimit {
				errorResponse(w, "Daily mail limit exceeded.", http.StatusForbidden)
				return
			}
		}

		emailID, err := mailboxes.Send(acct.Email, req.To, req.CC, req.BCC, req.Subject, req.Body)
		if err != nil {
			log.Error("failed to send email", "from", acct.Email, "error", err)
			serviceError(w, err)
			return
		}

		successResponse(w, "Email sent successfully", map[string]interface{}{
			"success":  true,
			"email_id": emailID,
		})
	}
}

// SaveDraftHandler stores a draft in the authenticated account's mailbox.
func SaveDraftHandler(mailboxes *services.MailboxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct := accountFrom(r)

		var req SendMailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, "Invalid request payload", http.StatusBadRequest)
			return
		}

		draftID, err := mailboxes.SaveDraft(acct.Email, req.To, req.CC, req.BCC, req.Subject, req.Body)
		if err != nil {
			serviceError(w, err)
			return
		}

		successResponse(w, "Draft saved successfully", map[string]interface{}{
			"email_id": draftID,
		})
	}
}

// GetEmailHandler fetches a single email. Viewing an unread inbox email
// marks it read.
func GetEmailHandler(mailboxes *services.MailboxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct := accountFrom(r)
		id := mux.Vars(r)["id"]

		email, err := mailboxes.Get(acct.Email, id)
		if err != nil {
			serviceError(w, err)
			return
		}
		successResponse(w, "Email retrieved successfully", email)
	}
}

// MoveEmailHandler moves an email to another folder.
func MoveEmailHandler(mailboxes *services.MailboxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct := accountFrom(r)
		id := mux.Vars(r)["id"]
		folder := r.URL.Query().Get("folder")

		if err := mailboxes.Move(acct.Email, id, folder); err != nil {
			serviceError(w, err)
			return
		}
		successResponse(w, "Email moved to "+folder, nil)
	}
}

// DeleteEmailHandler removes an email permanently.
func DeleteEmailHandler(mailboxes *services.MailboxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct := accountFrom(r)
		id := mux.Vars(r)["id"]

		if err := mailboxes.Delete(acct.Email, id); err != nil {
			serviceError(w, err)
			return
		}
		successResponse(w, "Email deleted permanently", nil)
	}
}

// queryInt parses a non-negative integer query parameter, falling back to a
// default on absence or garbage.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
