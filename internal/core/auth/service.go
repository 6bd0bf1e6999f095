package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/highbelief/solar-monitor-go/pkg/errors"
	"github.com/highbelief/solar-monitor-go/pkg/version"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the operator account and token settings
type Config struct {
	Username    string
	Password    string
	JWTSecret   string
	TokenExpiry time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost
	BcryptCost int
}

// Service authenticates the plant operator and issues JWTs
type Service struct {
	username     string
	passwordHash []byte
	jwtSecret    []byte
	tokenExpiry  time.Duration
	logger       *logrus.Logger
	now          func() time.Time
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *UserInfo `json:"user"`
}

// UserInfo represents user information for responses
type UserInfo struct {
	Username string `json:"username"`
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewService creates a new authentication service. The configured password is
// hashed once here and never kept in plain text.
func NewService(cfg Config, logger *logrus.Logger) (*Service, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if cfg.TokenExpiry <= 0 {
		cfg.TokenExpiry = time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = logrus.New()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &Service{
		username:     cfg.Username,
		passwordHash: hash,
		jwtSecret:    []byte(cfg.JWTSecret),
		tokenExpiry:  cfg.TokenExpiry,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Login checks the credentials and returns a signed token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) == 1
	// Always compare the hash so a wrong username costs the same as a wrong password
	passwordErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password))

	if !usernameOK || passwordErr != nil {
		s.logger.WithField("username", req.Username).Warn("Login attempt with invalid credentials")
		return nil, apperrors.WithDetails(apperrors.ErrUnauthorized, "invalid username or password")
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.tokenExpiry)
	claims := &TokenClaims{
		Username: s.username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    version.ServiceName,
			Subject:   s.username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.WithError(err).Error("Failed to sign JWT token")
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.WithField("username", s.username).Info("User logged in successfully")

	return &LoginResponse{
		Token:     tokenString,
		ExpiresAt: expiresAt,
		User:      &UserInfo{Username: s.username},
	}, nil
}

// ValidateToken validates a JWT token and returns user information
func (s *Service) ValidateToken(tokenString string) (*UserInfo, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(version.ServiceName), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, err, "invalid token")
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.Username != s.username {
		return nil, apperrors.WithDetails(apperrors.ErrUnauthorized, "invalid token claims")
	}

	return &UserInfo{Username: claims.Username}, nil
}
