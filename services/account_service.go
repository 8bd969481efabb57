package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sailesh298-rgb/EMAIL/config"
	"github.com/sailesh298-rgb/EMAIL/database"
	"github.com/sailesh298-rgb/EMAIL/metrics"
)

// AccountService manages email accounts and their credentials.
type AccountService struct {
	config *config.Config
	db     *sql.DB
	log    hclog.Logger
}

// NewAccountService creates a new AccountService instance
func NewAccountService(cfg *config.Config, db *sql.DB, logger hclog.Logger) *AccountService {
	return &AccountService{
		config: cfg,
		db:     db,
		log:    logger.Named("accounts"),
	}
}

// NewAccount is one entry of a create or bulk-create request.
type NewAccount struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// BulkResult reports the outcome of a bulk account creation. Failures are
// collected per item; they never abort the batch.
type BulkResult struct {
	Created  int                 `json:"created"`
	Errors   []string            `json:"errors"`
	Accounts []*database.Account `json:"accounts"`
}

// Create provisions a single account and drops a welcome email into its
// inbox. The welcome sender is system@<domain of the new address>.
func (s *AccountService) Create(email, password, displayName string) (*database.Account, error) {
	domain, err := addressDomain(email)
	if err != nil {
		return nil, err
	}
	return s.create(email, password, displayName, "system@"+domain)
}

// BulkCreate provisions many accounts for one domain. Each entry is handled
// independently; a duplicate or failed entry is recorded as an error string
// and the batch continues.
func (s *AccountService) BulkCreate(accounts []NewAccount, domain string) *BulkResult {
	result := &BulkResult{Errors: []string{}, Accounts: []*database.Account{}}

	for _, entry := range accounts {
		acct, err := s.create(entry.Email, entry.Password, entry.DisplayName, "welcome@"+domain)
		if err == ErrAccountExists {
			result.Errors = append(result.Errors, fmt.Sprintf("Account %s already exists", entry.Email))
			continue
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to create %s: %v", entry.Email, err))
			continue
		}
		result.Accounts = append(result.Accounts, acct)
	}

	result.Created = len(result.Accounts)
	return result
}

func (s *AccountService) create(email, password, displayName, welcomeFrom string) (*database.Account, error) {
	if _, err := addressDomain(email); err != nil {
		return nil, err
	}
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	exists, err := s.Exists(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acct := &database.Account{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    time.Now().UTC(),
		StorageUsed:  0,
		StorageQuota: 1000,
		Status:       "active",
	}

	_, err = s.db.Exec(
		`INSERT INTO accounts (email, password_hash, display_name, created_at, last_login, storage_used, storage_quota, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		acct.Email, acct.PasswordHash, acct.DisplayName, acct.CreatedAt, nil,
		acct.StorageUsed, acct.StorageQuota, acct.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.insertWelcomeEmail(acct, welcomeFrom); err != nil {
		// The account itself is usable; a missing welcome email is not
		// worth failing the creation over.
		s.log.Warn("failed to insert welcome email", "account", email, "error", err)
	}

	metrics.AccountsCreated.Inc()
	s.log.Info("account created", "email", email)
	return acct, nil
}

func (s *AccountService) insertWelcomeEmail(acct *database.Account, from string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour email account %s has been successfully created.\n\nYou can now send and receive emails.\n\nBest regards,\nEmail Service Team",
		acct.DisplayName, acct.Email,
	)
	welcome := &database.Email{
		ID:        newEmailID(),
		AccountID: acct.Email,
		FromEmail: from,
		To:        []string{acct.Email},
		Cc:        []string{},
		Bcc:       []string{},
		Subject:   "Welcome to your new email account!",
		Body:      body,
		Timestamp: time.Now().UTC(),
		Folder:    FolderInbox,
		Read:      false,
	}
	return insertEmail(s.db, welcome)
}

// Authenticate verifies the password for an account and updates its last
// login time on success.
func (s *AccountService) Authenticate(email, password string) (*database.Account, error) {
	acct, err := s.Get(email)
	if err == ErrNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if _, err := s.db.Exec(`UPDATE accounts SET last_login = $1 WHERE email = $2`, now, email); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	acct.LastLogin = &now

	metrics.Logins.Inc()
	return acct, nil
}

// ChangePassword rotates an account's password hash after re-verifying the
// current password.
func (s *AccountService) ChangePassword(email, currentPassword, newPassword string) error {
	acct, err := s.Get(email)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(currentPassword)) != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.db.Exec(`UPDATE accounts SET password_hash = $1 WHERE email = $2`, string(hash), email); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.Info("password changed", "email", email)
	return nil
}

// Exists reports whether an account with the given email is registered. The
// Mailbox Engine uses it to decide delivery eligibility.
func (s *AccountService) Exists(email string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM accounts WHERE email = $1`, email).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up account: %w", err)
	}
	return true, nil
}

// Get fetches a full account record by email.
func (s *AccountService) Get(email string) (*database.Account, error) {
	acct := &database.Account{}
	var lastLogin sql.NullTime
	err := s.db.QueryRow(
		`SELECT email, password_hash, display_name, created_at, last_login, storage_used, storage_quota, status
		 FROM accounts WHERE email = $1`,
		email,
	).Scan(&acct.Email, &acct.PasswordHash, &acct.DisplayName, &acct.CreatedAt,
		&lastLogin, &acct.StorageUsed, &acct.StorageQuota, &acct.Status)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if lastLogin.Valid {
		t := lastLogin.Time
		acct.LastLogin = &t
	}
	return acct, nil
}

// addressDomain extracts the domain part of an email address.
func addressDomain(email string) (string, error) {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "", ErrInvalidAddress
	}
	return email[at+1:], nil
}
