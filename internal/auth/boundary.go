package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/service"
)

// User-facing messages.
const (
	MsgCredentialsRequired = "Email and password are required."
	MsgInvalidCredentials  = "Invalid login credentials."
)

// Boundary owns the current identity. The application constructs one and
// hands it to every component that needs to know who is signed in.
type Boundary struct {
	provider    service.IdentityProvider
	store       SessionStore
	session     *model.Session
	subscribers map[int]func(*model.Session)
	nextID      int
	loaded      bool
	mu          sync.Mutex
}

// NewBoundary creates a boundary over provider, persisting sessions in store.
func NewBoundary(provider service.IdentityProvider, store SessionStore) *Boundary {
	return &Boundary{
		provider:    provider,
		store:       store,
		subscribers: make(map[int]func(*model.Session)),
	}
}

// Session returns the current session, or nil when signed out. The first
// call restores the persisted session and validates it with the provider;
// a rejected session is discarded.
func (b *Boundary) Session(ctx context.Context) (*model.Session, error) {
	b.mu.Lock()
	if b.loaded {
		s := b.session
		b.mu.Unlock()
		return s, nil
	}
	b.mu.Unlock()

	stored, err := b.store.Load()
	if err != nil {
		return nil, err
	}

	var current *model.Session
	if stored != nil {
		current, err = b.provider.Refresh(ctx, stored)
		switch {
		case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrNoSession):
			slog.Info("stored session rejected, signing out", "error", err)
			if clearErr := b.store.Clear(); clearErr != nil {
				slog.Warn("failed to clear stored session", "error", clearErr)
			}
			current = nil
		case err != nil:
			return nil, err
		default:
			if saveErr := b.store.Save(current); saveErr != nil {
				slog.Warn("failed to persist refreshed session", "error", saveErr)
			}
		}
	}

	b.set(current)
	return current, nil
}

// SignIn authenticates with email and password.
func (b *Boundary) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, common.NewUserError(MsgCredentialsRequired, common.ErrInvalidInput)
	}

	session, err := b.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := b.store.Save(session); err != nil {
		slog.Warn("failed to persist session", "error", err)
	}

	b.set(session)
	slog.Info("signed in", "email", session.Email)
	return session, nil
}

// SignOut ends the current session locally and at the provider. The local
// session is dropped even when the provider call fails.
func (b *Boundary) SignOut(ctx context.Context) error {
	b.mu.Lock()
	current := b.session
	b.mu.Unlock()

	var providerErr error
	if current != nil {
		providerErr = b.provider.SignOut(ctx, current)
	}
	if err := b.store.Clear(); err != nil {
		return err
	}

	b.set(nil)
	return providerErr
}

// Subscribe registers fn for session changes and returns its cancel func.
func (b *Boundary) Subscribe(fn func(*model.Session)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

func (b *Boundary) set(session *model.Session) {
	b.mu.Lock()
	b.session = session
	b.loaded = true
	subs := make([]func(*model.Session), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}
