// Package auth implements the authentication gate: it issues and verifies
// the access tokens that admit a client to a meeting session. The hub trusts
// the identity resolved here and never re-verifies credentials.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meetsync/backend/internal/model"
)

// ErrInvalidToken is returned for tokens that fail signature or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the data stored inside an access token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Gate issues and verifies access tokens with an HMAC secret.
type Gate struct {
	secret   []byte
	lifetime time.Duration
}

// NewGate creates a Gate. lifetime bounds token validity; zero selects 24h.
func NewGate(secret string, lifetime time.Duration) *Gate {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &Gate{secret: []byte(secret), lifetime: lifetime}
}

// IssueToken creates a signed token for the given identity.
func (g *Gate) IssueToken(identity model.Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   identity.UserID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(g.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "meetsync",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// ResolveIdentity parses and validates a token string and returns the
// verified identity it carries.
func (g *Gate) ResolveIdentity(tokenString string) (model.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return g.secret, nil
	})
	if err != nil {
		return model.Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return model.Identity{}, ErrInvalidToken
	}
	return model.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// Authorize decides whether the identity may join the meeting. The decision
// is boolean; callers close the transport on denial.
func (g *Gate) Authorize(identity model.Identity, meeting *model.Meeting) bool {
	return meeting != nil && meeting.HasParticipant(identity.UserID)
}
