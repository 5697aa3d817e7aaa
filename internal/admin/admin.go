package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/aimguide/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrUnknownAccount = errors.New("unknown admin account")
)

// Claims carried by an admin session token.
type Claims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// GetAdminAccount retrieves an admin account by username
func GetAdminAccount(ctx context.Context, db *sqlx.DB, username string) (*models.AdminAccount, error) {
	var admin models.AdminAccount
	err := db.GetContext(ctx, &admin, `SELECT username, display_name, token_hash, roles, created_at, updated_at FROM admin_accounts WHERE username=$1`, username)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// VerifyAdminToken checks if the provided token matches the stored hash
func VerifyAdminToken(hashedToken, plainToken string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken))
	return err == nil
}

// HashToken hashes a plain admin token for storage.
func HashToken(plainToken string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hashed), nil
}

// CreateAdminAccount creates or updates an admin account (used for seeding)
func CreateAdminAccount(ctx context.Context, db *sqlx.DB, username, displayName, plainToken string, roles []string) error {
	hashedToken, err := HashToken(plainToken)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO admin_accounts (username, display_name, token_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			token_hash = EXCLUDED.token_hash,
			roles = EXCLUDED.roles,
			updated_at = NOW()
	`, username, displayName, hashedToken, pq.Array(roles))

	return err
}

// IssueToken signs an HS256 session token for an admin.
func IssueToken(secret string, account *models.AdminAccount, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := Claims{
		Username: account.Username,
		Roles:    []string(account.Roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseToken validates a session token and returns its claims.
func ParseToken(secret, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AccountLookup finds an admin account by username.
type AccountLookup func(ctx context.Context, username string) (*models.AdminAccount, error)

// DBLookup reads accounts from the admin_accounts table.
func DBLookup(db *sqlx.DB) AccountLookup {
	return func(ctx context.Context, username string) (*models.AdminAccount, error) {
		return GetAdminAccount(ctx, db, username)
	}
}

// StaticLookup serves a single account configured at startup, for
// deployments without a database.
func StaticLookup(username, plainToken string) (AccountLookup, error) {
	if plainToken == "" {
		return nil, errors.New("admin token is empty")
	}
	hash, err := HashToken(plainToken)
	if err != nil {
		return nil, err
	}
	account := &models.AdminAccount{Username: username, DisplayName: username, TokenHash: hash, Roles: []string{"super_admin"}}
	return func(ctx context.Context, name string) (*models.AdminAccount, error) {
		if name != username {
			return nil, ErrUnknownAccount
		}
		return account, nil
	}, nil
}
