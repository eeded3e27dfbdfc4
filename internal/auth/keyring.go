package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/kroner/internal/model"
	"github.com/zalando/go-keyring"
)

const (
	// DefaultKeyringService names the credential store entry.
	DefaultKeyringService = "kroner"
	// AccessTokenEnv overrides the stored session for scripted use.
	AccessTokenEnv = "KRONER_ACCESS_TOKEN"
)

var (
	keyringGet    = keyring.Get
	keyringSet    = keyring.Set
	keyringDelete = keyring.Delete
)

// SessionStore persists the current session between runs.
type SessionStore interface {
	Load() (*model.Session, error)
	Save(session *model.Session) error
	Clear() error
}

// KeyringStore keeps the session as JSON in the OS credential store.
type KeyringStore struct {
	service string
	account string
}

// NewKeyringStore stores sessions under service, one entry per account.
// The account is usually the store URL so different stores keep separate
// sessions.
func NewKeyringStore(service, account string) *KeyringStore {
	if strings.TrimSpace(service) == "" {
		service = DefaultKeyringService
	}
	return &KeyringStore{service: service, account: account}
}

// Load returns the stored session, or nil when there is none. The
// KRONER_ACCESS_TOKEN environment variable takes precedence.
func (k *KeyringStore) Load() (*model.Session, error) {
	if token := strings.TrimSpace(os.Getenv(AccessTokenEnv)); token != "" {
		return &model.Session{AccessToken: token}, nil
	}

	secret, err := keyringGet(k.service, k.account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read keyring item service=%q account=%q: %w",
			k.service,
			k.account,
			err,
		)
	}

	var session model.Session
	if err := json.Unmarshal([]byte(secret), &session); err != nil {
		return nil, fmt.Errorf("failed to decode stored session: %w", err)
	}
	if session.AccessToken == "" {
		return nil, nil
	}
	return &session, nil
}

// Save writes session to the keyring.
func (k *KeyringStore) Save(session *model.Session) error {
	if session == nil {
		return k.Clear()
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := keyringSet(k.service, k.account, string(data)); err != nil {
		return fmt.Errorf(
			"failed to store keyring item service=%q account=%q: %w",
			k.service,
			k.account,
			err,
		)
	}
	return nil
}

// Clear removes the stored session. A missing entry is not an error.
func (k *KeyringStore) Clear() error {
	err := keyringDelete(k.service, k.account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keyring item service=%q account=%q: %w", k.service, k.account, err)
	}
	return nil
}
