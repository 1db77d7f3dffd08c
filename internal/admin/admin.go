package admin

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/playmatatu/ballsim/internal/models"
)

var (
	ErrOperatorNotFound = errors.New("operator not found")
	ErrInvalidToken     = errors.New("invalid operator token")
	ErrNoDatabase       = errors.New("operator accounts require a database")
)

// GetOperator retrieves an operator by name
func GetOperator(db *sqlx.DB, name string) (*models.Operator, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}
	var op models.Operator
	err := db.Get(&op, `SELECT name, display_name, token_hash, roles, created_at, updated_at FROM admin_accounts WHERE name=$1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load operator %s: %w", name, err)
	}
	return &op, nil
}

// VerifyOperatorToken checks a plain token against its bcrypt hash
func VerifyOperatorToken(hashedToken, plainToken string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken)) == nil
}

// HashToken hashes a plain operator token with bcrypt
func HashToken(plainToken string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(hashed), nil
}

// CreateOperator creates or updates an operator account
func CreateOperator(db *sqlx.DB, name, displayName, plainToken string, roles []string) error {
	if db == nil {
		return ErrNoDatabase
	}
	name = strings.TrimSpace(name)
	if name == "" || plainToken == "" {
		return fmt.Errorf("operator name and token are required")
	}

	hashedToken, err := HashToken(plainToken)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO admin_accounts (name, display_name, token_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    token_hash = EXCLUDED.token_hash,
		    roles = EXCLUDED.roles,
		    updated_at = NOW()
	`, name, displayName, hashedToken, pq.Array(roles))
	if err != nil {
		return fmt.Errorf("upsert operator %s: %w", name, err)
	}
	return nil
}

// ValidateOperatorCredentials validates a name + token combination
func ValidateOperatorCredentials(db *sqlx.DB, name, token string) (*models.Operator, error) {
	op, err := GetOperator(db, name)
	if err != nil {
		log.Printf("[ADMIN] Operator lookup failed for %s: %v", name, err)
		return nil, err
	}

	if !VerifyOperatorToken(op.TokenHash, token) {
		log.Printf("[ADMIN] Token verification failed for operator %s", name)
		return nil, ErrInvalidToken
	}

	return op, nil
}

// LogOperatorAction records an operator action in the audit log. No-op without a database.
func LogOperatorAction(db *sqlx.DB, operator, ip, route, action string, details map[string]interface{}, success bool) error {
	if db == nil {
		return nil
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil || details == nil {
		detailsJSON = []byte("{}")
	}

	_, err = db.Exec(`
		INSERT INTO admin_audit (operator_name, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, operator, ip, route, action, detailsJSON, success)

	if err != nil {
		log.Printf("[ADMIN] Failed to log operator action %s: %v", action, err)
	}

	return err
}

// GetOperatorAuditLogs retrieves recent audit entries with pagination
func GetOperatorAuditLogs(db *sqlx.DB, limit, offset int) ([]models.OperatorAudit, error) {
	logs := []models.OperatorAudit{}
	if db == nil {
		return logs, nil
	}
	err := db.Select(&logs, `
		SELECT id, operator_name, ip, route, action, details, success, created_at
		FROM admin_audit
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return logs, err
}

// HasRole reports whether the operator carries role
func HasRole(op *models.Operator, role string) bool {
	for _, r := range op.Roles {
		if r == role {
			return true
		}
	}
	return false
}
