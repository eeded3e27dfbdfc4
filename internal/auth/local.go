package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/storage"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a local session stays valid.
const DefaultSessionTTL = 30 * 24 * time.Hour

const minPasswordLength = 8

// UserStore persists local identities and sessions.
type UserStore interface {
	CreateUser(ctx context.Context, user storage.UserRecord) error
	UserByEmail(ctx context.Context, email string) (*storage.UserRecord, error)
	CreateSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	SessionByHash(ctx context.Context, tokenHash string) (*storage.SessionRecord, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

// LocalProvider authenticates against the users table of a SQL store.
// Session tokens are random uuids; only their HMAC under the store key is
// persisted, so rotating the key signs everyone out.
type LocalProvider struct {
	store UserStore
	now   func() time.Time
	key   []byte
	ttl   time.Duration
}

// LocalOption configures a LocalProvider.
type LocalOption func(*LocalProvider)

// WithSessionTTL overrides DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) LocalOption {
	return func(p *LocalProvider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) LocalOption {
	return func(p *LocalProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewLocalProvider creates a provider over store. key is the store access key.
func NewLocalProvider(store UserStore, key string, opts ...LocalOption) (*LocalProvider, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("store key: %w", common.ErrMissingConfig)
	}
	p := &LocalProvider{
		store: store,
		key:   []byte(key),
		ttl:   DefaultSessionTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Register creates a local identity.
func (p *LocalProvider) Register(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return common.NewUserError(MsgCredentialsRequired, common.ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return common.NewUserError("Enter a valid email address.", common.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return common.NewUserError(fmt.Sprintf("Password must be at least %d characters.", minPasswordLength), common.ErrInvalidInput)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := p.store.CreateUser(ctx, storage.UserRecord{ID: uuid.NewString(), Email: email, PasswordHash: hash}); err != nil {
		return err
	}

	slog.Info("registered local user", "email", email)
	return nil
}

// SignInWithPassword checks the credentials and opens a session.
func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := p.store.UserByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewUserError(MsgInvalidCredentials, common.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !ComparePasswords(user.PasswordHash, password) {
		return nil, common.NewUserError(MsgInvalidCredentials, common.ErrUnauthorized)
	}

	token := uuid.NewString()
	expires := p.now().Add(p.ttl).UTC().Truncate(time.Second)
	if err := p.store.CreateSession(ctx, p.tokenHash(token), user.ID, expires); err != nil {
		return nil, err
	}

	return &model.Session{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: token,
		ExpiresAt:   expires,
	}, nil
}

// Refresh resolves the session's token against the store.
func (p *LocalProvider) Refresh(ctx context.Context, session *model.Session) (*model.Session, error) {
	if session == nil || session.AccessToken == "" {
		return nil, common.ErrNoSession
	}

	rec, err := p.store.SessionByHash(ctx, p.tokenHash(session.AccessToken))
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("session not recognized: %w", common.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !p.now().Before(rec.ExpiresAt) {
		return nil, fmt.Errorf("session expired: %w", common.ErrUnauthorized)
	}

	return &model.Session{
		UserID:      rec.UserID,
		Email:       rec.Email,
		AccessToken: session.AccessToken,
		ExpiresAt:   rec.ExpiresAt,
	}, nil
}

// SignOut deletes the session.
func (p *LocalProvider) SignOut(ctx context.Context, session *model.Session) error {
	if session == nil || session.AccessToken == "" {
		return nil
	}
	return p.store.DeleteSession(ctx, p.tokenHash(session.AccessToken))
}

func (p *LocalProvider) tokenHash(token string) string {
	mac := hmac.New(sha256.New, p.key)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
