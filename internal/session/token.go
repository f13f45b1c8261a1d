package session

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// Issuer mints signed client tokens. The token id (jti) is the session key;
// the signature only lets the server recognise tokens it handed out.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Mint returns a new signed token and its session id.
func (i *Issuer) Mint(now time.Time) (string, string, error) {
	if i == nil {
		return "", "", fmt.Errorf("session issuer is nil")
	}
	if len(i.secret) == 0 || i.issuer == "" {
		return "", "", fmt.Errorf("session issuer config is incomplete")
	}

	id := uuid.NewString()
	claims := jwt.MapClaims{
		"iss": i.issuer,
		"jti": id,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", "", err
	}
	return signed, id, nil
}

// Verify checks signature, issuer and expiry and returns the session id.
func (i *Issuer) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid session token")
	}
	if !claims.VerifyIssuer(i.issuer, true) {
		return "", fmt.Errorf("unexpected issuer")
	}
	id, _ := claims["jti"].(string)
	if id == "" {
		return "", fmt.Errorf("missing jti claim")
	}
	return id, nil
}
