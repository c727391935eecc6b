package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec(testSecret, "portafolio-test", time.Hour)

	token, expiresAt, err := codec.Issue(7, "docente@unsaac.edu.pe", []string{"teacher", "verifier"}, "")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := codec.Parse(token)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
	require.Equal(t, "docente@unsaac.edu.pe", claims.Email)
	require.Equal(t, []string{"teacher", "verifier"}, claims.Roles)
	require.Empty(t, claims.ActiveRole)
	require.Equal(t, "portafolio-test", claims.Issuer)
}

func TestTokenCarriesActiveRole(t *testing.T) {
	codec := NewTokenCodec(testSecret, "portafolio-test", time.Hour)

	token, _, err := codec.Issue(7, "docente@unsaac.edu.pe", []string{"teacher", "verifier"}, "verifier")
	require.NoError(t, err)

	claims, err := codec.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "verifier", claims.ActiveRole)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	codec := NewTokenCodec(testSecret, "portafolio-test", time.Hour)
	other := NewTokenCodec("ffffffffffffffffffffffffffffffff", "portafolio-test", time.Hour)

	token, _, err := codec.Issue(7, "docente@unsaac.edu.pe", nil, "")
	require.NoError(t, err)

	_, err = other.Parse(token)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	codec := &TokenCodec{secret: []byte(testSecret), issuer: "portafolio-test", ttl: -time.Minute}

	token, _, err := codec.Issue(7, "docente@unsaac.edu.pe", nil, "")
	require.NoError(t, err)

	_, err = codec.Parse(token)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestParseRejectsGarbage(t *testing.T) {
	codec := NewTokenCodec(testSecret, "portafolio-test", time.Hour)

	_, err := codec.Parse("not.a.token")
	require.ErrorIs(t, err, shared.ErrUnauthenticated)

	_, err = codec.Parse("")
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestDefaultTTL(t *testing.T) {
	codec := NewTokenCodec(testSecret, "portafolio-test", 0)
	require.Equal(t, 2*time.Hour, codec.TTL())
}
