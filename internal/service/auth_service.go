package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/trading-ledger/internal/config"
	"github.com/trading-ledger/internal/models"
	"github.com/trading-ledger/internal/repository"
	"github.com/trading-ledger/pkg/crypto"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
)

const tokenIssuer = "trading-ledger"

// AuthService issues and verifies the bearer tokens that guard the
// strategy and portfolio surface
type AuthService struct {
	users *repository.UserRepository
	cfg   config.JWTConfig
}

func NewAuthService(users *repository.UserRepository, cfg config.JWTConfig) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

// RegisterRequest carries a new account's signup fields
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

// Credentials identify a user at login by username or email
type Credentials struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Token is an issued bearer token together with its expiry
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Claims carried by an issued token. The registered subject holds the
// user id; Name is the username at issue time.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// UserID decodes the numeric user id from the token subject
func (c *Claims) UserID() uint {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// Register creates a user account. The email is checked for uniqueness
// before the username, so a duplicate signup reports the email clash.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	if taken, err := s.users.ExistsByEmail(req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := s.users.ExistsByUsername(req.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and issues a fresh token. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(creds *Credentials) (*Token, error) {
	user, err := s.users.GetByUsernameOrEmail(creds.Identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !crypto.CheckPassword(creds.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

// Refresh exchanges a still-valid token for a new one
func (s *AuthService) Refresh(raw string) (*Token, error) {
	claims, err := s.ValidateToken(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(claims.UserID())
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.issueToken(user)
}

// ValidateToken parses and verifies a raw token string. The signing
// algorithm and issuer are pinned, not taken from the token header.
func (s *AuthService) ValidateToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return []byte(s.cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) issueToken(user *models.User) (*Token, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.cfg.ExpireHours) * time.Hour)

	claims := &Claims{
		Name: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// GetUserByID loads a user by primary key
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	return s.users.GetByID(id)
}
