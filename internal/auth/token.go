package auth

import (
	"errors"
	"time"

	"github.com/aoki-blog/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the fixed validity window for issued tokens.
const DefaultTokenTTL = time.Hour

// Verification failure classes. Verify never returns a principal together
// with any of these.
var (
	// ErrTokenExpired means the token was well-formed and correctly signed
	// but its expiry timestamp has elapsed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid means the signature does not match the payload under
	// the server secret, or the claims failed validation.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenMalformed means the token could not be parsed at all.
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims embeds the principal snapshot alongside the registered JWT claims.
// The snapshot is trusted as-is for the token's lifetime; it is not
// re-checked against the store on each request, trading staleness for
// statelessness.
type Claims struct {
	jwt.RegisteredClaims
	User types.Principal `json:"user"`
}

// TokenService issues and verifies signed, time-boxed identity tokens.
// The secret and clock are fixed at construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService signing with the given secret.
// A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token embedding the principal snapshot, expiring at the
// fixed offset from the current time.
func (s *TokenService) Issue(principal types.Principal) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		User: principal,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token and returns the embedded principal.
// Any failure yields no principal and one of ErrTokenExpired,
// ErrTokenInvalid, or ErrTokenMalformed.
func (s *TokenService) Verify(tokenString string) (types.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return types.Principal{}, classifyTokenError(err)
	}
	if !token.Valid {
		return types.Principal{}, ErrTokenInvalid
	}
	return claims.User, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}
