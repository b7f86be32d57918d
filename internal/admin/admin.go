package admin

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/minigolf/internal/logger"
	"github.com/playmatatu/minigolf/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAccountNotFound = errors.New("admin account not found")
	ErrInvalidToken    = errors.New("invalid admin token")
)

// GetAdminAccount retrieves an admin account by username
func GetAdminAccount(db *sqlx.DB, username string) (*models.AdminAccount, error) {
	var account models.AdminAccount
	err := db.Get(&account, `SELECT username, display_name, token_hash, roles, created_at, updated_at FROM admin_accounts WHERE username=$1`, username)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// HashToken returns the bcrypt hash stored for an admin token.
func HashToken(plainToken string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hashed), nil
}

// VerifyAdminToken checks if the provided token matches the stored hash
func VerifyAdminToken(hashedToken, plainToken string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken)) == nil
}

// CreateAdminAccount creates or replaces an admin account
func CreateAdminAccount(db *sqlx.DB, username, displayName, plainToken string, roles []string) error {
	hashed, err := HashToken(plainToken)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO admin_accounts (username, display_name, token_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			token_hash = EXCLUDED.token_hash,
			roles = EXCLUDED.roles,
			updated_at = NOW()
	`, username, displayName, hashed, pq.Array(roles))
	return err
}

// ValidateAdminCredentials loads the account and checks its token.
func ValidateAdminCredentials(db *sqlx.DB, username, token string) (*models.AdminAccount, error) {
	log := logger.For("admin")

	account, err := GetAdminAccount(db, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn().Str("admin", username).Msg("unknown admin account")
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !VerifyAdminToken(account.TokenHash, token) {
		log.Warn().Str("admin", username).Msg("admin token rejected")
		return nil, ErrInvalidToken
	}
	return account, nil
}

// LogAdminAction records an admin action in the audit log
func LogAdminAction(db *sqlx.DB, username, ip, route, action string, details map[string]interface{}, success bool) error {
	log := logger.For("admin")

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal audit details")
		detailsJSON = []byte("{}")
	}

	_, err = db.Exec(`
		INSERT INTO admin_audit_log (admin_username, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, username, ip, route, action, detailsJSON, success)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("failed to log admin action")
	}
	return err
}

// GetAdminAuditLogs retrieves recent admin audit entries
func GetAdminAuditLogs(db *sqlx.DB, limit, offset int) ([]models.AdminAuditEntry, error) {
	entries := []models.AdminAuditEntry{}
	err := db.Select(&entries, `
		SELECT id, admin_username, ip, route, action, details, success, created_at
		FROM admin_audit_log
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return entries, err
}
