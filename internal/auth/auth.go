// Package auth issues and checks the bearer tokens of dashboard users.
package auth

import (
	"errors"
	"fmt"
	"time"

	"supplychain/internal/config"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for a token that is malformed, forged or expired
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are carried inside every issued token
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
	jwt.StandardClaims
}

// Token is the result of a successful login
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
	Role      string    `json:"role,omitempty"`
}

// Issuer signs tokens for the configured users and verifies them
type Issuer struct {
	secret []byte
	ttl    time.Duration
	users  map[string]config.UserConfig
	now    func() time.Time
}

// NewIssuer builds an issuer from the auth config section
func NewIssuer(cfg config.AuthConfig) *Issuer {
	users := make(map[string]config.UserConfig, len(cfg.Users))
	for _, u := range cfg.Users {
		users[u.Username] = u
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Issuer{secret: []byte(cfg.Secret), ttl: ttl, users: users, now: time.Now}
}

// Login checks the password against the stored bcrypt hash and issues a token
func (i *Issuer) Login(username, password string) (*Token, error) {
	user, ok := i.users[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := i.now()
	expires := now.Add(i.ttl)
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.Username,
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Token{Token: signed, ExpiresAt: expires, Username: user.Username, Role: user.Role}, nil
}

// Parse verifies a token and returns its claims
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword returns the bcrypt hash to put in a user's password_hash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
