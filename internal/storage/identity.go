package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/kroner/internal/common"
)

// UserRecord is a stored local identity.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
}

// SessionRecord is a stored local session joined with its user.
type SessionRecord struct {
	ExpiresAt time.Time
	UserID    string
	Email     string
}

// CreateUser stores a new local identity. Emails are compared lowercased.
func (s *SQLStorage) CreateUser(ctx context.Context, user UserRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(user.ID, "id"); err != nil {
		return err
	}
	if err := validateString(user.Email, "email"); err != nil {
		return err
	}

	if _, err := s.UserByEmail(ctx, user.Email); err == nil {
		return fmt.Errorf("user %q already exists: %w", user.Email, common.ErrInvalidInput)
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`,
		user.ID, normalizeEmail(user.Email), user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UserByEmail looks up a local identity, or returns common.ErrNotFound.
func (s *SQLStorage) UserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var u UserRecord
	err := s.db.QueryRowContext(ctx, `SELECT id, email, password_hash FROM users WHERE email = ?`, normalizeEmail(email)).
		Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", email, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// CreateSession records a session token hash for userID.
func (s *SQLStorage) CreateSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(tokenHash, "tokenHash"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO sessions (token_hash, user_id, expires_at) VALUES (?, ?, ?)`,
		tokenHash, userID, expiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// SessionByHash resolves a session token hash, or returns common.ErrNotFound.
func (s *SQLStorage) SessionByHash(ctx context.Context, tokenHash string) (*SessionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		rec     SessionRecord
		expires int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT s.user_id, u.email, s.expires_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = ?`, tokenHash).Scan(&rec.UserID, &rec.Email, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	rec.ExpiresAt = time.Unix(expires, 0).UTC()
	return &rec, nil
}

// DeleteSession removes a session. Missing sessions are not an error.
func (s *SQLStorage) DeleteSession(ctx context.Context, tokenHash string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions drops sessions that expired before now.
func (s *SQLStorage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired sessions: %w", err)
	}
	return n, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
