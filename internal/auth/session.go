package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSessionExpired is returned by Parse for a genuine token past its
// expiry. The claims are returned alongside it.
var ErrSessionExpired = errors.New("session expired")

// Session is handed to the caller on login and passed back on every
// subsequent call.
type Session struct {
	Token     string
	UserID    uint
	Username  string
	ExpiresAt time.Time
}

// Claims is what a session token carries.
type Claims struct {
	UserID    uint
	SessionID string
}

type sessionClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and verifies HS256 session tokens.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for userID bound to sessionID.
func (i *SessionIssuer) Issue(userID uint, sessionID string) (string, time.Time, error) {
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.ttl)
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies signature and expiry and returns the token's claims.
func (i *SessionIssuer) Parse(tokenStr string) (Claims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	// The signature is checked before expiry, so an expired token is genuine.
	expired := errors.Is(err, jwt.ErrTokenExpired)
	if err != nil && !expired {
		return Claims{}, errors.New("invalid token")
	}

	if claims.UserID == 0 || claims.ID == "" {
		return Claims{}, errors.New("invalid claims")
	}

	result := Claims{UserID: claims.UserID, SessionID: claims.ID}
	if expired {
		return result, ErrSessionExpired
	}
	return result, nil
}
