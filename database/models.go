package database

import "time"

// Account represents a row in the accounts table. The email address is the
// primary key and the partition key for every mailbox query.
type Account struct {
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	DisplayName  string     `json:"display_name"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
	StorageUsed  int64      `json:"storage_used"`
	StorageQuota int64      `json:"storage_quota"` // MB
	Status       string     `json:"status"`        // "active" or "inactive"
}

// Email represents a row in the emails table. A single logical send produces
// one row per mailbox touched; rows never share id, folder or read state.
type Email struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	FromEmail   string    `json:"from_email"`
	To          []string  `json:"to"`
	Cc          []string  `json:"cc"`
	Bcc         []string  `json:"bcc"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Timestamp   time.Time `json:"timestamp"`
	Folder      string    `json:"folder"`
	Read        bool      `json:"read"`
	Attachments []string  `json:"attachments"`
}
