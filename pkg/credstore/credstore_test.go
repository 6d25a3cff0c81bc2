package credstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedesk/godesk/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.LoadSession()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveSession(domain.Session{Token: "tok-1", TokenType: "bearer"}))

	got, ok, err := s.LoadSession()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok-1", got.Token)
	assert.Equal(t, "bearer", got.TokenType)
}

func TestUserCacheRoundTrip(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.LoadUser()
	require.NoError(t, err)
	assert.False(t, ok)

	user := domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	require.NoError(t, s.SaveUser(user))

	got, ok, err := s.LoadUser()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestWipeClearsEverything(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SaveSession(domain.Session{Token: "tok-1"}))
	require.NoError(t, s.SaveUser(domain.User{ID: "u1", Username: "alice"}))

	require.NoError(t, s.Wipe())

	_, ok, err := s.LoadSession()
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.LoadUser()
	require.NoError(t, err)
	assert.False(t, ok)
}
