package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	in := Identity{ID: "u-1", Email: "a@b.c", Name: "Ann", Role: "admin"}

	token, err := m.Issue(in)
	require.NoError(t, err)

	out, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.True(t, out.IsAdmin())
}

func TestParseRejectsForeignSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).Issue(Identity{ID: "u-1"})
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := m.Issue(Identity{ID: "u-1"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseDefaultsRole(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(Identity{ID: "u-1"})
	require.NoError(t, err)

	id, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user", id.Role)
	assert.False(t, id.IsAdmin())
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithIdentity(context.Background(), Identity{ID: "u-1"})
	id, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u-1", id.ID)
}
