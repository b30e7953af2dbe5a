package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/cosmetica/internal/domain"
)

func TestIssueVerify(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	u := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}

	tok, exp, err := s.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	pr, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, pr.UserID)
	assert.True(t, pr.IsAdmin())
}

func TestVerifyRejects(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	u := &domain.User{ID: uuid.New(), Role: domain.RoleUser}
	tok, _, err := s.Issue(u)
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		_, err := NewSigner("other", time.Hour).Verify(tok)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := s.Verify("not.a.token")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
	t.Run("expired", func(t *testing.T) {
		late := NewSigner("secret", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
