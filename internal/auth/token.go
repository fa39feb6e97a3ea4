package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/marketplace-gateway/internal/config"
	"github.com/spec-kit/marketplace-gateway/internal/domain"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingSecret = errors.New("token secret is empty")
	ErrSharedSecret  = errors.New("access and refresh secrets must differ")

	errUnexpectedAlgo = errors.New("unexpected signing method")
	errMissingSubject = errors.New("token subject missing")
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

var signingMethod = jwt.SigningMethodHS256

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. It intentionally carries no role.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenManager issues and validates access and refresh tokens, each with its own key and lifetime.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenManager builds a manager from the auth configuration.
func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, ErrSharedSecret
	}
	tm := &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
	if tm.accessTTL <= 0 {
		tm.accessTTL = defaultAccessTTL
	}
	if tm.refreshTTL <= 0 {
		tm.refreshTTL = defaultRefreshTTL
	}
	return tm, nil
}

// WithClock returns a copy of the manager that reads time from now.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	clone := *tm
	clone.now = now
	return &clone
}

// Issue signs an access token carrying role and a role-less refresh token for subjectID.
func (tm *TokenManager) Issue(actor domain.ActorClass, subjectID, role string) (domain.TokenPair, error) {
	issuedAt := tm.now()

	access := &AccessClaims{
		Role:             role,
		RegisteredClaims: tm.registered(actor, subjectID, issuedAt, tm.accessTTL),
	}
	accessToken, err := jwt.NewWithClaims(signingMethod, access).SignedString(tm.accessSecret)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh := &RefreshClaims{
		RegisteredClaims: tm.registered(actor, subjectID, issuedAt, tm.refreshTTL),
	}
	refreshToken, err := jwt.NewWithClaims(signingMethod, refresh).SignedString(tm.refreshSecret)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ParseAccess validates signature, expiry and audience of an access token.
func (tm *TokenManager) ParseAccess(actor domain.ActorClass, tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := tm.parse(tokenStr, claims, tm.accessSecret, actor); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefresh validates signature, expiry and audience of a refresh token.
func (tm *TokenManager) ParseRefresh(actor domain.ActorClass, tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := tm.parse(tokenStr, claims, tm.refreshSecret, actor); err != nil {
		return nil, err
	}
	return claims, nil
}

// AccessTTL returns the configured access token lifetime.
func (tm *TokenManager) AccessTTL() time.Duration { return tm.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (tm *TokenManager) RefreshTTL() time.Duration { return tm.refreshTTL }

func (tm *TokenManager) registered(actor domain.ActorClass, subjectID string, issuedAt time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subjectID,
		Audience:  jwt.ClaimStrings{string(actor)},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}
}

func (tm *TokenManager) parse(tokenStr string, claims jwt.Claims, secret []byte, actor domain.ActorClass) error {
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != signingMethod {
			return nil, errUnexpectedAlgo
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithAudience(string(actor)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return errors.Join(ErrInvalidToken, errMissingSubject)
	}
	return nil
}
