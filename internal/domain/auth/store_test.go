package auth

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/storage"
)

type stubAuthenticator struct {
	token string
	err   error
	calls int
}

func (s *stubAuthenticator) Login(ctx context.Context, username, password string) (string, error) {
	s.calls++
	return s.token, s.err
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestStore_LoginPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStorage()
	authn := &stubAuthenticator{token: "tok-123"}

	s := NewStore(ctx, backend, authn, quietLogger())
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Login(ctx, "johnd", "m38rmF$"))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "johnd", s.Username())
	assert.Equal(t, "tok-123", s.State().Token)

	raw, err := backend.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"tok-123","username":"johnd"}`, string(raw))

	restored := NewStore(ctx, backend, authn, quietLogger())
	assert.Equal(t, State{Authenticated: true, Username: "johnd", Token: "tok-123"}, restored.State())
}

func TestStore_LoginFailuresAreGeneric(t *testing.T) {
	ctx := context.Background()

	for name, cause := range map[string]error{
		"rejected": errors.New("status 401"),
		"network":  errors.New("dial tcp: connection refused"),
	} {
		t.Run(name, func(t *testing.T) {
			backend := storage.NewMemoryStorage()
			s := NewStore(ctx, backend, &stubAuthenticator{err: cause}, quietLogger())

			err := s.Login(ctx, "johnd", "bad")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.NotContains(t, err.Error(), cause.Error())
			assert.False(t, s.IsAuthenticated())

			_, getErr := backend.Get(ctx, StorageKey)
			assert.ErrorIs(t, getErr, storage.ErrNotFound)
		})
	}
}

type readOnlyStorage struct {
	storage.Storage
}

func (readOnlyStorage) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("read-only")
}

func TestStore_LoginFailsWhenRecordCannotBeStored(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, readOnlyStorage{storage.NewMemoryStorage()}, &stubAuthenticator{token: "tok"}, quietLogger())

	assert.ErrorIs(t, s.Login(ctx, "johnd", "pw"), ErrInvalidCredentials)
	assert.False(t, s.IsAuthenticated())
}

func TestStore_Logout(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStorage()
	s := NewStore(ctx, backend, &stubAuthenticator{token: "tok"}, quietLogger())
	require.NoError(t, s.Login(ctx, "johnd", "pw"))

	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, State{}, s.State())

	_, err := backend.Get(ctx, StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	restored := NewStore(ctx, backend, &stubAuthenticator{}, quietLogger())
	assert.False(t, restored.IsAuthenticated())
}

func TestStore_RestorationRequiresTokenAndUsername(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want bool
	}{
		"complete":         {`{"token":"t","username":"u"}`, true},
		"missing token":    {`{"username":"u"}`, false},
		"empty token":      {`{"token":"","username":"u"}`, false},
		"missing username": {`{"token":"t"}`, false},
		"malformed":        {`{"token":`, false},
		"wrong type":       {`["t","u"]`, false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := storage.NewMemoryStorage()
			require.NoError(t, backend.Set(ctx, StorageKey, []byte(tc.raw)))

			authn := &stubAuthenticator{}
			s := NewStore(ctx, backend, authn, quietLogger())
			assert.Equal(t, tc.want, s.IsAuthenticated())
			assert.Zero(t, authn.calls, "restoration never contacts the catalog")
		})
	}
}
