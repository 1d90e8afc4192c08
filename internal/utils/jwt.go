package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for a token that fails to parse, verify or
// carries no email claim.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of an access token.  The identity travels in the
// email claim; exp and iat are the registered claims.
type Claims struct {
    Email string `json:"email"`
    jwt.RegisteredClaims
}

// AccessToken represents a signed JWT access token along with its expiry.
// Clients send it back as "Authorization: Bearer <Token>".
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for email that expires after
// ttl.  There are no refresh tokens: a client logs in again once it expires.
func NewAccessToken(secret, email string, ttl time.Duration) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := Claims{
        Email: email,
        RegisteredClaims: jwt.RegisteredClaims{
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret and returns the email claim.
// Only HS256 is accepted; expired tokens are rejected.
func ParseAccessToken(secret, raw string) (string, error) {
    var claims Claims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
    if err != nil || !tok.Valid {
        return "", ErrInvalidToken
    }
    if claims.Email == "" {
        return "", ErrInvalidToken
    }
    return claims.Email, nil
}
