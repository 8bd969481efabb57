package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sailesh298-rgb/EMAIL/config"
	"github.com/sailesh298-rgb/EMAIL/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "webmail-test.db")
	db, err := database.InitDB("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.ApplyMigrations(db, "sqlite3"))
	return db
}

func newTestServices(t *testing.T) (*AccountService, *MailboxService, *sql.DB) {
	t.Helper()

	db := openTestDB(t)
	cfg := &config.Config{BcryptCost: bcrypt.MinCost}
	logger := hclog.NewNullLogger()

	accounts := NewAccountService(cfg, db, logger)
	mailboxes := NewMailboxService(db, accounts, logger)
	return accounts, mailboxes, db
}

// insertTestAccount registers an account directly, without the welcome email
// a service-level Create would add, so mailbox tests start from an empty
// mailbox.
func insertTestAccount(t *testing.T, db *sql.DB, email string) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO accounts (email, password_hash, display_name, created_at, storage_used, storage_quota, status)
		 VALUES ($1, 'x', $2, CURRENT_TIMESTAMP, 0, 1000, 'active')`,
		email, email,
	)
	require.NoError(t, err)
}

func countEmails(t *testing.T, db *sql.DB, where string, args ...interface{}) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM emails WHERE `+where, args...).Scan(&count)
	require.NoError(t, err)
	return count
}
