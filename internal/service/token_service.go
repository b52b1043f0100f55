package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backoffice-api/internal/models"
	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
)

// TokenConfig defines the signing material and lifetimes of session tokens.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenService signs and verifies access and refresh tokens. The two kinds use
// separate keys, so a token of one kind never verifies as the other.
type TokenService struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenService constructs a TokenService.
func NewTokenService(config TokenConfig) (*TokenService, error) {
	if config.AccessSecret == "" || config.RefreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if config.AccessSecret == config.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if config.AccessTTL <= 0 {
		config.AccessTTL = 5 * time.Minute
	}
	if config.RefreshTTL <= 0 {
		config.RefreshTTL = 24 * time.Hour
	}
	return &TokenService{config: config, now: time.Now}, nil
}

// WithClock returns a copy of the service reading time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	clone := *s
	clone.now = now
	return &clone
}

// AccessTTL is the lifetime of issued access tokens.
func (s *TokenService) AccessTTL() time.Duration {
	return s.config.AccessTTL
}

// RefreshTTL is the lifetime of issued refresh tokens.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.config.RefreshTTL
}

// SignAccess issues an access token with a fresh random jti.
func (s *TokenService) SignAccess(payload models.TokenPayload) (string, string, error) {
	jti := uuid.NewString()
	token, err := s.sign(payload, jti, s.config.AccessTTL, s.config.AccessSecret)
	if err != nil {
		return "", "", err
	}
	return token, jti, nil
}

// SignRefresh issues a refresh token for sessionID carrying the caller-chosen jti.
func (s *TokenService) SignRefresh(sessionID, jti string, payload models.TokenPayload) (string, string, error) {
	if sessionID == "" || jti == "" {
		return "", "", errors.New("refresh token needs a session id and a jti")
	}
	payload.SessionID = sessionID
	token, err := s.sign(payload, jti, s.config.RefreshTTL, s.config.RefreshSecret)
	if err != nil {
		return "", "", err
	}
	return token, jti, nil
}

// VerifyAccess validates an access token and returns its claims.
func (s *TokenService) VerifyAccess(token string) (*models.Claims, error) {
	return s.verify(token, s.config.AccessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (s *TokenService) VerifyRefresh(token string) (*models.Claims, error) {
	return s.verify(token, s.config.RefreshSecret)
}

func (s *TokenService) sign(payload models.TokenPayload, jti string, ttl time.Duration, secret string) (string, error) {
	issuedAt := s.now().UTC()
	claims := &models.Claims{
		TokenPayload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.config.Issuer,
			Subject:   payload.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	return signed, nil
}

func (s *TokenService) verify(tokenString, secret string) (*models.Claims, error) {
	if tokenString == "" {
		return nil, appErrors.ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, appErrors.ErrInvalidToken.Message)
	}
	if !token.Valid || claims.ID == "" || claims.UserID == "" || claims.SessionID == "" {
		return nil, appErrors.ErrInvalidToken
	}

	return claims, nil
}
