package token

import (
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/mbaudry/moustass-web/internal/model"
)

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	m := NewManager([]byte("secret-key"), 24*time.Hour)
	uid := uuid.Must(uuid.NewV4())

	tok, exp, err := m.Issue(uid, model.RoleAdmin)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, uid.String(), claims.Subject)
	require.Equal(t, model.RoleAdmin, claims.Role)
	require.NotEmpty(t, claims.ID)

	p, err := claims.Principal()
	require.NoError(t, err)
	require.Equal(t, uid, p.UserID)
	require.True(t, p.IsAdmin())
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	m := NewManager([]byte("secret-key"), -time.Minute)
	tok, _, err := m.Issue(uuid.Must(uuid.NewV4()), model.RoleUser)
	require.NoError(t, err)

	_, err = m.Verify(tok)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewManager([]byte("secret-a"), time.Hour)
	verifier := NewManager([]byte("secret-b"), time.Hour)

	tok, _, err := issuer.Issue(uuid.Must(uuid.NewV4()), model.RoleUser)
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	m := NewManager([]byte("secret-key"), time.Hour)
	for _, bad := range []string{"", "abc", "a.b", "a.b.c.d"} {
		_, err := m.Verify(bad)
		require.ErrorIs(t, err, ErrMalformed, "input %q", bad)
	}

	// Three parts but not a JWT.
	_, err := m.Verify("not.a.jwt")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformed) || errors.Is(err, ErrInvalid))
}

func TestClaims_Principal_BadSubject(t *testing.T) {
	t.Parallel()

	c := Claims{Role: model.RoleUser}
	c.Subject = "not-a-uuid"
	_, err := c.Principal()
	require.ErrorIs(t, err, ErrInvalid)
}
