package auth

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func createTestStore(t *testing.T) *storage.SQLStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("hemmelig123")
	require.NoError(t, err)
	assert.NotEqual(t, "hemmelig123", hash)
	assert.True(t, ComparePasswords(hash, "hemmelig123"))
	assert.False(t, ComparePasswords(hash, "feil"))
}

func TestLocalProvider(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	p, err := NewLocalProvider(store, "store-key", WithClock(clock), WithSessionTTL(time.Hour))
	require.NoError(t, err)

	t.Run("register validates input", func(t *testing.T) {
		err := p.Register(ctx, "", "hemmelig123")
		assert.Equal(t, MsgCredentialsRequired, common.UserMessage(err))

		err = p.Register(ctx, "kari", "hemmelig123")
		assert.ErrorIs(t, err, common.ErrInvalidInput)

		err = p.Register(ctx, "kari@example.no", "kort")
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	require.NoError(t, p.Register(ctx, "kari@example.no", "hemmelig123"))

	t.Run("wrong password", func(t *testing.T) {
		_, err := p.SignInWithPassword(ctx, "kari@example.no", "feil-passord")
		assert.ErrorIs(t, err, common.ErrUnauthorized)
		assert.Equal(t, MsgInvalidCredentials, common.UserMessage(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := p.SignInWithPassword(ctx, "ola@example.no", "hemmelig123")
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("sign in, refresh and sign out", func(t *testing.T) {
		session, err := p.SignInWithPassword(ctx, "Kari@Example.no", "hemmelig123")
		require.NoError(t, err)
		assert.NotEmpty(t, session.UserID)
		assert.Equal(t, "kari@example.no", session.Email)
		assert.NotEmpty(t, session.AccessToken)
		assert.Equal(t, now.Add(time.Hour), session.ExpiresAt)

		refreshed, err := p.Refresh(ctx, &model.Session{AccessToken: session.AccessToken})
		require.NoError(t, err)
		assert.Equal(t, session.UserID, refreshed.UserID)
		assert.Equal(t, session.Email, refreshed.Email)

		require.NoError(t, p.SignOut(ctx, session))
		_, err = p.Refresh(ctx, session)
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("expired session", func(t *testing.T) {
		session, err := p.SignInWithPassword(ctx, "kari@example.no", "hemmelig123")
		require.NoError(t, err)

		later, err := NewLocalProvider(store, "store-key", WithClock(func() time.Time { return now.Add(2 * time.Hour) }))
		require.NoError(t, err)
		_, err = later.Refresh(ctx, session)
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("rotated key invalidates sessions", func(t *testing.T) {
		session, err := p.SignInWithPassword(ctx, "kari@example.no", "hemmelig123")
		require.NoError(t, err)

		rotated, err := NewLocalProvider(store, "new-key", WithClock(clock))
		require.NoError(t, err)
		_, err = rotated.Refresh(ctx, session)
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := NewLocalProvider(store, " ")
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	t.Setenv(AccessTokenEnv, "")

	store := NewKeyringStore("", "sqlite://test.db")

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	session := &model.Session{UserID: "u-1", Email: "kari@example.no", AccessToken: "tok"}
	require.NoError(t, store.Save(session))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "u-1", loaded.UserID)
	assert.Equal(t, "tok", loaded.AccessToken)

	other := NewKeyringStore("", "https://other.example")
	loaded, err = other.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestKeyringStore_EnvOverride(t *testing.T) {
	keyring.MockInit()
	t.Setenv(AccessTokenEnv, " env-token ")

	loaded, err := NewKeyringStore("kroner", "acct").Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "env-token", loaded.AccessToken)
}

type fakeProvider struct {
	signInErr  error
	refreshErr error
	signedOut  []string
	mu         sync.Mutex
}

func (f *fakeProvider) SignInWithPassword(_ context.Context, email, _ string) (*model.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &model.Session{UserID: "u-" + email, Email: email, AccessToken: "tok-" + email}, nil
}

func (f *fakeProvider) SignOut(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, s.AccessToken)
	return nil
}

func (f *fakeProvider) Refresh(_ context.Context, s *model.Session) (*model.Session, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &model.Session{UserID: "u-restored", Email: "restored@example.no", AccessToken: s.AccessToken}, nil
}

type memoryStore struct {
	session *model.Session
	saves   int
}

func (m *memoryStore) Load() (*model.Session, error) { return m.session, nil }
func (m *memoryStore) Save(s *model.Session) error  { m.session = s; m.saves++; return nil }
func (m *memoryStore) Clear() error                 { m.session = nil; return nil }

func TestBoundary(t *testing.T) {
	ctx := context.Background()

	t.Run("no stored session", func(t *testing.T) {
		b := NewBoundary(&fakeProvider{}, &memoryStore{})
		s, err := b.Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("restores and refreshes stored session", func(t *testing.T) {
		store := &memoryStore{session: &model.Session{AccessToken: "saved"}}
		b := NewBoundary(&fakeProvider{}, store)

		s, err := b.Session(ctx)
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "u-restored", s.UserID)
		assert.Equal(t, "restored@example.no", store.session.Email)
	})

	t.Run("rejected session is cleared", func(t *testing.T) {
		store := &memoryStore{session: &model.Session{AccessToken: "stale"}}
		b := NewBoundary(&fakeProvider{refreshErr: common.ErrUnauthorized}, store)

		s, err := b.Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, s)
		assert.Nil(t, store.session)
	})

	t.Run("refresh failure is reported", func(t *testing.T) {
		store := &memoryStore{session: &model.Session{AccessToken: "saved"}}
		b := NewBoundary(&fakeProvider{refreshErr: errors.New("network down")}, store)

		_, err := b.Session(ctx)
		assert.Error(t, err)
		assert.NotNil(t, store.session)
	})

	t.Run("sign in requires credentials", func(t *testing.T) {
		b := NewBoundary(&fakeProvider{}, &memoryStore{})

		_, err := b.SignIn(ctx, "  ", "pw")
		assert.Equal(t, MsgCredentialsRequired, common.UserMessage(err))

		_, err = b.SignIn(ctx, "kari@example.no", "")
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	t.Run("subscribers see sign in and sign out", func(t *testing.T) {
		provider := &fakeProvider{}
		store := &memoryStore{}
		b := NewBoundary(provider, store)

		var seen []*model.Session
		unsubscribe := b.Subscribe(func(s *model.Session) { seen = append(seen, s) })

		s, err := b.SignIn(ctx, "kari@example.no", "pw")
		require.NoError(t, err)
		assert.Equal(t, s, store.session)

		current, err := b.Session(ctx)
		require.NoError(t, err)
		assert.Equal(t, s, current)

		require.NoError(t, b.SignOut(ctx))
		assert.Nil(t, store.session)
		assert.Equal(t, []string{"tok-kari@example.no"}, provider.signedOut)

		require.Len(t, seen, 2)
		assert.Equal(t, "kari@example.no", seen[0].Email)
		assert.Nil(t, seen[1])

		unsubscribe()
		_, err = b.SignIn(ctx, "ola@example.no", "pw")
		require.NoError(t, err)
		assert.Len(t, seen, 2)
	})

	t.Run("failed sign in leaves state alone", func(t *testing.T) {
		b := NewBoundary(&fakeProvider{signInErr: common.ErrUnauthorized}, &memoryStore{})
		_, err := b.SignIn(ctx, "kari@example.no", "pw")
		assert.ErrorIs(t, err, common.ErrUnauthorized)

		s, err := b.Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, s)
	})
}
