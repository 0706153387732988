package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Identity struct {
	UserID uuid.UUID
	Email  string
}

// IdentityProvider issues and verifies first-party session tokens. An empty
// secret disables both directions, so a misconfigured deployment fails closed
// instead of accepting unsigned tokens.
type IdentityProvider struct {
	secret        []byte
	lifetimeHours int
}

func NewIdentityProvider(secret string, lifetimeHours int) *IdentityProvider {
	return &IdentityProvider{secret: []byte(secret), lifetimeHours: lifetimeHours}
}

func (p *IdentityProvider) IssueToken(userID uuid.UUID, email string) (string, error) {
	if len(p.secret) == 0 {
		return "", fmt.Errorf("session secret is not configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{email},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour * time.Duration(p.lifetimeHours))),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func (p *IdentityProvider) GetIdentity(tokenString string) (*Identity, error) {
	if len(p.secret) == 0 {
		return nil, fmt.Errorf("session secret is not configured")
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithLeeway(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("identity can't be retrieved, %v", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("malformed subject in token, %v", err)
	}
	var email string
	if len(claims.Audience) > 0 {
		email = claims.Audience[0]
	}
	return &Identity{UserID: userID, Email: email}, nil
}
