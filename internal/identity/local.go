package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// LocalVerifier accepts HS256 tokens signed with a shared secret. It stands
// in for Firebase in local development and tests.
type LocalVerifier struct {
	secret []byte
}

func NewLocalVerifier(secret string) *LocalVerifier {
	return &LocalVerifier{secret: []byte(secret)}
}

// IssueToken signs a token for email that expires after ttl.
func (v *LocalVerifier) IssueToken(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   email,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

func (v *LocalVerifier) Verify(_ context.Context, idToken string) (*Identity, error) {
	token, err := jwt.Parse(idToken, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.Wrap(err, "invalid token")
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return nil, ErrNoEmail
	}
	uid, _ := claims["sub"].(string)
	return &Identity{UID: uid, Email: email}, nil
}
