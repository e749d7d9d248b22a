// Package token issues and validates signed, time-limited bearer tokens.
//
// Tokens are stateless: verification is a pure function of the signing key
// and the token itself, so there is no server-side session store and no
// revocation list. A compromised token stays valid until natural expiry.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tracknest/tracknest/internal/model"
)

// Token errors.
var (
	// ErrInvalidToken indicates a parse failure, signature mismatch or expiry.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMalformedClaims indicates the token verified but its claims do not
	// form a valid principal.
	ErrMalformedClaims = errors.New("malformed token claims")
)

type claims struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 tokens with a single static key held in
// process memory. The key is injected at construction and rotatable only by
// redeploy.
type Service struct {
	signKey []byte
	ttl     time.Duration
}

// NewService constructs a token service. ttl bounds both the token's exp
// claim and the auth cookie lifetime.
func NewService(signKey []byte, ttl time.Duration) *Service {
	return &Service{signKey: signKey, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue creates a signed HS256 token for the principal. The subject is the
// person id as a decimal string; fullName, username and role ride along as
// custom claims; exp = iat + TTL.
func (s *Service) Issue(p model.Principal) (string, error) {
	now := time.Now()
	c := claims{
		FullName: p.FullName,
		Username: p.Username,
		Role:     string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.signKey)
}

// Validate reports whether the token parses, has a valid signature and has
// not expired. It fails closed: any error yields false.
func (s *Service) Validate(tokenString string) bool {
	_, err := s.parse(tokenString)
	return err == nil
}

// ExtractSubjectID returns the person id encoded in the token subject.
func (s *Service) ExtractSubjectID(tokenString string) (int64, error) {
	c, err := s.parse(tokenString)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrMalformedClaims
	}
	return id, nil
}

// ExtractPrincipal reconstructs the request principal from a token. The role
// claim is validated against the closed role set.
func (s *Service) ExtractPrincipal(tokenString string) (model.Principal, error) {
	c, err := s.parse(tokenString)
	if err != nil {
		return model.Principal{}, err
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return model.Principal{}, ErrMalformedClaims
	}
	role, err := model.ParseRole(c.Role)
	if err != nil {
		return model.Principal{}, ErrMalformedClaims
	}
	if c.Username == "" {
		return model.Principal{}, ErrMalformedClaims
	}
	return model.Principal{
		ID:       id,
		FullName: c.FullName,
		Username: c.Username,
		Role:     role,
	}, nil
}

// parse verifies the signature and registered claims (exp included).
func (s *Service) parse(tokenString string) (*claims, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &c, nil
}
