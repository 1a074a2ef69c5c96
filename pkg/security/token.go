package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"profile-auth/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims is the payload of both members of a token pair. Only TokenType and
// the registered expiry/id fields differ between the access and refresh token.
type Claims struct {
	TokenType TokenType `json:"token_type"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	jwt.RegisteredClaims
}

// Identity is the user data embedded into issued tokens.
type Identity struct {
	UserID   int64
	Email    string
	Username string
}

type TokenPair struct {
	Access  string
	Refresh string
}

type TokenConfig struct {
	Algorithm     string
	Secret        []byte
	PrivateKeyPEM []byte
	PublicKeyPEM  []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration
	Issuer        string
}

type TokenService struct {
	method     jwt.SigningMethod
	signKey    any
	verifyKey  any
	accessTTL  time.Duration
	refreshTTL time.Duration
	leeway     time.Duration
	issuer     string
	now        func() time.Time
}

type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	s := &TokenService{
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		leeway:     cfg.Leeway,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}

	switch cfg.Algorithm {
	case "", "HS256":
		s.method = jwt.SigningMethodHS256
	case "HS384":
		s.method = jwt.SigningMethodHS384
	case "HS512":
		s.method = jwt.SigningMethodHS512
	case "EdDSA":
		s.method = jwt.SigningMethodEdDSA
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}

	if s.method == jwt.SigningMethodEdDSA {
		priv, err := jwt.ParseEdPrivateKeyFromPEM(cfg.PrivateKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("parse ed25519 private key: %w", err)
		}
		pub, err := jwt.ParseEdPublicKeyFromPEM(cfg.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("parse ed25519 public key: %w", err)
		}
		s.signKey, s.verifyKey = priv, pub
	} else {
		if len(cfg.Secret) == 0 {
			return nil, fmt.Errorf("%s requires a secret", s.method.Alg())
		}
		s.signKey, s.verifyKey = cfg.Secret, cfg.Secret
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// IssuePair mints a refresh token and an access token for the same identity.
func (s *TokenService) IssuePair(id Identity) (TokenPair, error) {
	refresh, err := s.sign(RefreshToken, id, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	access, err := s.sign(AccessToken, id, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// RefreshAccess validates a refresh token and returns a new access token
// carrying the same identity claims. The refresh token itself stays valid.
func (s *TokenService) RefreshAccess(refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken, RefreshToken)
	if err != nil {
		return "", err
	}

	return s.sign(AccessToken, Identity{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
	}, s.accessTTL)
}

func (s *TokenService) VerifyAccess(accessToken string) (*Claims, error) {
	return s.parse(accessToken, AccessToken)
}

func (s *TokenService) sign(typ TokenType, id Identity, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		TokenType: typ,
		UserID:    id.UserID,
		Email:     id.Email,
		Username:  id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (s *TokenService) parse(tokenString string, want TokenType) (*Claims, error) {
	if tokenString == "" {
		return nil, apperror.ErrInvalidToken
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.leeway > 0 {
		options = append(options, jwt.WithLeeway(s.leeway))
	}
	if s.issuer != "" {
		options = append(options, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwt.NewParser(options...).ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.verifyKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 || claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return nil, apperror.ErrInvalidToken
	}

	if claims.TokenType != want {
		return nil, apperror.ErrWrongTokenType
	}

	return claims, nil
}
