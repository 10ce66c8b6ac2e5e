package token // package token issues and verifies the signed access/refresh token pair

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Kind selects which of the two token families an operation applies to.
// Access and refresh tokens are signed with independent secrets so one kind
// can never verify as the other.
type Kind int

const (
	Access Kind = iota
	Refresh
)

// ErrInvalidToken is returned on any verification failure: bad signature,
// wrong signing method, expired, malformed, or claims of the wrong shape.
// Callers must treat every variant uniformly as unauthenticated; the error
// deliberately does not say which check failed.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by both token kinds.  ID is the principal's
// UUID.  Role is present only on admin tokens; user tokens carry the id
// alone.  The embedded RegisteredClaims hold expiry and issued-at.
type Claims struct {
	ID   string `json:"id"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Pair bundles a freshly issued access and refresh token along with their
// expiration times, which handlers echo back to the client.
type Pair struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

// Issuer signs and verifies HS256 JWTs.  The two secrets must differ; the
// constructor is the only place that can fail and a failure there is a
// startup misconfiguration, never a per-request condition.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer builds an Issuer from the two signing secrets and their TTLs.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("token: access and refresh secrets must differ")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token: non-positive TTL")
	}
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// Issue signs a token of the requested kind for the given principal id and
// role (role may be empty for user-kind principals).  It returns the signed
// string and its expiry.
func (i *Issuer) Issue(id, role string, kind Kind) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.ttl(kind))
	claims := Claims{
		ID:   id,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret(kind))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssuePair issues an access and a refresh token for the same claims in one
// call, the shape every signin/signup flow needs.
func (i *Issuer) IssuePair(id, role string) (Pair, error) {
	access, accessExp, err := i.Issue(id, role, Access)
	if err != nil {
		return Pair{}, err
	}
	refresh, refreshExp, err := i.Issue(id, role, Refresh)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: refresh,
		RefreshExp:   refreshExp,
	}, nil
}

// Verify parses and validates a token of the requested kind and returns its
// claims.  Any failure collapses to ErrInvalidToken.
func (i *Issuer) Verify(raw string, kind Kind) (Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with any method other than HMAC before
		// touching the secret.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret(kind), nil
	})
	if err != nil || !tok.Valid || claims.ID == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// RefreshTTL exposes the configured refresh lifetime so the cookie max-age
// can match the token's own expiry.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// AccessTTL exposes the configured access lifetime for response payloads.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

func (i *Issuer) secret(kind Kind) []byte {
	if kind == Refresh {
		return i.refreshSecret
	}
	return i.accessSecret
}

func (i *Issuer) ttl(kind Kind) time.Duration {
	if kind == Refresh {
		return i.refreshTTL
	}
	return i.accessTTL
}
