package utils

import (
    "strings"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
    tok, err := NewAccessToken("secret", "a@example.com", time.Hour)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

    email, err := ParseAccessToken("secret", tok.Token)
    require.NoError(t, err)
    assert.Equal(t, "a@example.com", email)
}

func TestParseAccessTokenRejects(t *testing.T) {
    good, err := NewAccessToken("secret", "a@example.com", time.Hour)
    require.NoError(t, err)
    expired, err := NewAccessToken("secret", "a@example.com", -time.Minute)
    require.NoError(t, err)
    noEmail, err := NewAccessToken("secret", "", time.Hour)
    require.NoError(t, err)
    none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
        "email": "a@example.com",
        "exp":   time.Now().Add(time.Hour).Unix(),
    }).SignedString(jwt.UnsafeAllowNoneSignatureType)
    require.NoError(t, err)

    cases := map[string]struct{ secret, token string }{
        "wrong secret": {"other", good.Token},
        "expired":      {"secret", expired.Token},
        "no email":     {"secret", noEmail.Token},
        "garbage":      {"secret", "not.a.jwt"},
        "alg none":     {"secret", none},
    }
    for name, tc := range cases {
        t.Run(name, func(t *testing.T) {
            _, err := ParseAccessToken(tc.secret, tc.token)
            assert.ErrorIs(t, err, ErrInvalidToken)
        })
    }
}

func TestPasswordHashing(t *testing.T) {
    hash, err := HashPassword("Password123", bcrypt.MinCost)
    require.NoError(t, err)
    assert.NotEqual(t, "Password123", hash)
    assert.True(t, VerifyPassword(hash, "Password123"))
    assert.False(t, VerifyPassword(hash, "password123"))

    assert.False(t, NeedsRehash(hash, bcrypt.MinCost))
    assert.True(t, NeedsRehash(hash, bcrypt.MinCost+1))
    assert.True(t, NeedsRehash("not-a-hash", bcrypt.MinCost))
}

func TestPasswordEdgeCases(t *testing.T) {
    _, err := HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
    assert.ErrorIs(t, err, ErrPasswordTooLong)

    assert.Equal(t, bcrypt.DefaultCost, clampCost(0))
    assert.Equal(t, bcrypt.MaxCost, clampCost(99))
    assert.Equal(t, 12, clampCost(12))
}
