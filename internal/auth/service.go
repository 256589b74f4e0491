package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkboard/inkboard/internal/typeid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBoardProtected     = errors.New("board already protected")
	ErrInvalidToken       = errors.New("invalid token")
)

const (
	tokenTTL       = 24 * time.Hour
	maxDisplayName = 40
)

// Service issues guest tokens and guards passphrase-protected boards.
type Service struct {
	jwtSecret []byte
	cost      int

	mu     sync.RWMutex
	boards map[string][]byte // session id -> bcrypt hash
}

func NewService(jwtSecret string) *Service {
	return &Service{
		jwtSecret: []byte(jwtSecret),
		cost:      12,
		boards:    make(map[string][]byte),
	}
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Guest creates an anonymous identity with the given display name.
func (s *Service) Guest(displayName string) (*AuthResult, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = "Guest"
	}
	if r := []rune(displayName); len(r) > maxDisplayName {
		displayName = string(r[:maxDisplayName])
	}

	user := User{ID: typeid.NewUserID(), DisplayName: displayName}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// ValidateToken returns the user a token was issued to.
func (s *Service) ValidateToken(tokenString string) (*User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token subject: %w", ErrInvalidToken)
	}
	name, _ := claims["name"].(string)

	return &User{ID: userID, DisplayName: name}, nil
}

// ProtectBoard sets the passphrase of a session. A passphrase cannot be
// replaced once set.
func (s *Service) ProtectBoard(sessionID, passphrase string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), s.cost)
	if err != nil {
		return fmt.Errorf("hash passphrase: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[sessionID]; ok {
		return ErrBoardProtected
	}
	s.boards[sessionID] = hash
	return nil
}

// CheckBoard verifies passphrase for a session. Unprotected sessions accept
// any passphrase.
func (s *Service) CheckBoard(sessionID, passphrase string) error {
	s.mu.RLock()
	hash, ok := s.boards[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(passphrase)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IsProtected reports whether a session has a passphrase.
func (s *Service) IsProtected(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.boards[sessionID]
	return ok
}

func (s *Service) issueToken(user User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.DisplayName,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
