package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/sailesh298-rgb/EMAIL/database"
	"github.com/sailesh298-rgb/EMAIL/metrics"
)

// The five mailbox folders. An email record is always in exactly one of
// them and may be moved freely between any two.
const (
	FolderInbox  = "inbox"
	FolderSent   = "sent"
	FolderDrafts = "drafts"
	FolderTrash  = "trash"
	FolderSpam   = "spam"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ValidFolder reports whether name is one of the five mailbox folders.
func ValidFolder(name string) bool {
	switch name {
	case FolderInbox, FolderSent, FolderDrafts, FolderTrash, FolderSpam:
		return true
	}
	return false
}

// Stats summarises one account's mailbox: a count per folder, the unread
// inbox count, and the storage metadata from the account record.
type Stats struct {
	Inbox        int64 `json:"inbox"`
	Sent         int64 `json:"sent"`
	Drafts       int64 `json:"drafts"`
	Trash        int64 `json:"trash"`
	Spam         int64 `json:"spam"`
	Unread       int64 `json:"unread"`
	StorageUsed  int64 `json:"storage_used"`
	StorageQuota int64 `json:"storage_quota"`
}

// MailboxService persists email records and simulates delivery between
// accounts of this service. There is no network transport: sending writes a
// sent-folder copy for the sender and an inbox copy per local recipient.
type MailboxService struct {
	db       *sql.DB
	accounts *AccountService
	log      hclog.Logger
}

// NewMailboxService creates a new MailboxService instance
func NewMailboxService(db *sql.DB, accounts *AccountService, logger hclog.Logger) *MailboxService {
	return &MailboxService{
		db:       db,
		accounts: accounts,
		log:      logger.Named("mailbox"),
	}
}

// Send writes the sender's sent-folder copy and fans out one independent
// inbox copy per distinct to/cc recipient that has a local account.
// Recipients without an account are dropped silently. Bcc recipients are
// recorded on the sent copy only and never receive a delivered copy; the
// delivered copies always carry an empty bcc list. Returns the id of the
// sent-folder record.
//
// There is no atomicity across the writes: a failure mid fan-out leaves the
// copies written so far in place.
func (s *MailboxService) Send(fromEmail string, to, cc, bcc []string, subject, body string) (string, error) {
	now := time.Now().UTC()

	sentCopy := &database.Email{
		ID:        newEmailID(),
		AccountID: fromEmail,
		FromEmail: fromEmail,
		To:        to,
		Cc:        cc,
		Bcc:       bcc,
		Subject:   subject,
		Body:      body,
		Timestamp: now,
		Folder:    FolderSent,
		Read:      true,
	}
	if err := insertEmail(s.db, sentCopy); err != nil {
		return "", fmt.Errorf("failed to store sent copy: %w", err)
	}

	seen := make(map[string]bool)
	for _, recipient := range append(append([]string{}, to...), cc...) {
		if seen[recipient] {
			continue
		}
		seen[recipient] = true

		exists, err := s.accounts.Exists(recipient)
		if err != nil {
			return "", fmt.Errorf("failed to check recipient %s: %w", recipient, err)
		}
		if !exists {
			metrics.RecipientsDropped.Inc()
			s.log.Debug("recipient has no local account, dropping", "recipient", recipient)
			continue
		}

		inboxCopy := &database.Email{
			ID:        newEmailID(),
			AccountID: recipient,
			FromEmail: fromEmail,
			To:        []string{recipient},
			Cc:        cc,
			Bcc:       []string{},
			Subject:   subject,
			Body:      body,
			Timestamp: now,
			Folder:    FolderInbox,
			Read:      false,
		}
		if err := insertEmail(s.db, inboxCopy); err != nil {
			return "", fmt.Errorf("failed to deliver to %s: %w", recipient, err)
		}
		metrics.CopiesDelivered.Inc()
	}

	metrics.EmailsSent.Inc()
	s.log.Info("email sent", "from", fromEmail, "recipients", len(to)+len(cc), "id", sentCopy.ID)
	return sentCopy.ID, nil
}

// SaveDraft stores an unsent message in the author's drafts folder.
func (s *MailboxService) SaveDraft(ownerEmail string, to, cc, bcc []string, subject, body string) (string, error) {
	draft := &database.Email{
		ID:        newEmailID(),
		AccountID: ownerEmail,
		FromEmail: ownerEmail,
		To:        to,
		Cc:        cc,
		Bcc:       bcc,
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now().UTC(),
		Folder:    FolderDrafts,
		Read:      true,
	}
	if err := insertEmail(s.db, draft); err != nil {
		return "", fmt.Errorf("failed to store draft: %w", err)
	}
	return draft.ID, nil
}

// List returns one folder of an account's mailbox, newest first. The limit
// defaults to 50 and is capped at 200 to keep scans bounded.
func (s *MailboxService) List(accountEmail, folder string, limit, offset int) ([]*database.Email, error) {
	if !ValidFolder(folder) {
		return nil, ErrInvalidFolder
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(
		`SELECT id, account_id, from_email, to_emails, cc_emails, bcc_emails, subject, body, timestamp, folder, read, attachments
		 FROM emails WHERE account_id = $1 AND folder = $2
		 ORDER BY timestamp DESC LIMIT $3 OFFSET $4`,
		accountEmail, folder, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	defer rows.Close()

	emails := []*database.Email{}
	for rows.Next() {
		email, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over email rows: %w", err)
	}
	return emails, nil
}

// Get fetches a single email scoped to its owning account. An unread inbox
// email is marked read as a side effect (read-on-view).
func (s *MailboxService) Get(accountEmail, id string) (*database.Email, error) {
	row := s.db.QueryRow(
		`SELECT id, account_id, from_email, to_emails, cc_emails, bcc_emails, subject, body, timestamp, folder, read, attachments
		 FROM emails WHERE id = $1 AND account_id = $2`,
		id, accountEmail,
	)
	email, err := scanEmail(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if email.Folder == FolderInbox && !email.Read {
		if _, err := s.db.Exec(`UPDATE emails SET read = TRUE WHERE id = $1`, id); err != nil {
			return nil, fmt.Errorf("failed to mark email read: %w", err)
		}
		email.Read = true
	}
	return email, nil
}

// Move reassigns an email to another folder. Any folder may move to any
// other; only the folder column changes.
func (s *MailboxService) Move(accountEmail, id, folder string) error {
	if !ValidFolder(folder) {
		return ErrInvalidFolder
	}

	result, err := s.db.Exec(
		`UPDATE emails SET folder = $1 WHERE id = $2 AND account_id = $3`,
		folder, id, accountEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to move email: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an email permanently. Moving to trash is just a folder
// change; this is the only destructive operation.
func (s *MailboxService) Delete(accountEmail, id string) error {
	result, err := s.db.Exec(`DELETE FROM emails WHERE id = $1 AND account_id = $2`, id, accountEmail)
	if err != nil {
		return fmt.Errorf("failed to delete email: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStats derives the per-folder and unread counts for an account. Nothing
// is cached; every call recounts.
func (s *MailboxService) GetStats(accountEmail string) (*Stats, error) {
	acct, err := s.accounts.Get(accountEmail)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		StorageUsed:  acct.StorageUsed,
		StorageQuota: acct.StorageQuota,
	}

	targets := map[string]*int64{
		FolderInbox:  &stats.Inbox,
		FolderSent:   &stats.Sent,
		FolderDrafts: &stats.Drafts,
		FolderTrash:  &stats.Trash,
		FolderSpam:   &stats.Spam,
	}
	for folder, target := range targets {
		err := s.db.QueryRow(
			`SELECT COUNT(*) FROM emails WHERE account_id = $1 AND folder = $2`,
			accountEmail, folder,
		).Scan(target)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s folder: %w", folder, err)
		}
	}

	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM emails WHERE account_id = $1 AND folder = $2 AND read = FALSE`,
		accountEmail, FolderInbox,
	).Scan(&stats.Unread)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread emails: %w", err)
	}

	return stats, nil
}

func newEmailID() string {
	return uuid.NewString()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func insertEmail(db *sql.DB, email *database.Email) error {
	to, err := encodeAddressList(email.To)
	if err != nil {
		return err
	}
	cc, err := encodeAddressList(email.Cc)
	if err != nil {
		return err
	}
	bcc, err := encodeAddressList(email.Bcc)
	if err != nil {
		return err
	}
	attachments, err := encodeAddressList(email.Attachments)
	if err != nil {
		return err
	}

	_, err = db.Exec(
		`INSERT INTO emails (id, account_id, from_email, to_emails, cc_emails, bcc_emails, subject, body, timestamp, folder, read, attachments)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		email.ID, email.AccountID, email.FromEmail, to, cc, bcc,
		email.Subject, email.Body, email.Timestamp, email.Folder, email.Read, attachments,
	)
	if err != nil {
		return fmt.Errorf("failed to insert email: %w", err)
	}
	return nil
}

func scanEmail(row rowScanner) (*database.Email, error) {
	email := &database.Email{}
	var to, cc, bcc, attachments string

	err := row.Scan(&email.ID, &email.AccountID, &email.FromEmail, &to, &cc, &bcc,
		&email.Subject, &email.Body, &email.Timestamp, &email.Folder, &email.Read, &attachments)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan email row: %w", err)
	}

	if email.To, err = decodeAddressList(to); err != nil {
		return nil, err
	}
	if email.Cc, err = decodeAddressList(cc); err != nil {
		return nil, err
	}
	if email.Bcc, err = decodeAddressList(bcc); err != nil {
		return nil, err
	}
	if email.Attachments, err = decodeAddressList(attachments); err != nil {
		return nil, err
	}
	return email, nil
}

// Address lists are stored as JSON text columns so ordering survives the
// round trip on both database drivers.
func encodeAddressList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode address list: %w", err)
	}
	return string(raw), nil
}

func decodeAddressList(raw string) ([]string, error) {
	list := []string{}
	if raw == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("failed to decode address list: %w", err)
	}
	return list, nil
}
