package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rich-trivia-service/internal/app"
	"rich-trivia-service/internal/domain"
)

// CredentialStore persists login credentials (in-memory, Postgres, etc).
type CredentialStore interface {
	// CreateUser stores a new identity with its password hash; domain.ErrEmailTaken
	// when the email is already registered.
	CreateUser(ctx context.Context, identity domain.UserIdentity, passwordHash string) error
	// FindByEmail returns the identity and password hash for an email;
	// domain.ErrUserNotFound when absent.
	FindByEmail(ctx context.Context, email string) (domain.UserIdentity, string, error)
}

// Handler receives the current identity on every auth change; nil means
// signed out.
type Handler func(identity *domain.UserIdentity)

// Service is the auth provider: email/password credentials hashed with
// bcrypt, bearer tokens for the HTTP surface, and an auth-change
// subscription delivering the current identity. Every sign-in ensures the
// user's stats record exists.
type Service struct {
	store    CredentialStore
	stats    *app.StatsService
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time

	mu          sync.Mutex
	current     *domain.UserIdentity
	subscribers map[int]Handler
	nextSub     int
}

func NewService(store CredentialStore, stats *app.StatsService, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		store:       store,
		stats:       stats,
		secret:      []byte(secret),
		tokenTTL:    tokenTTL,
		now:         time.Now,
		subscribers: make(map[int]Handler),
	}
}

// Register creates an account and signs the user in.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (domain.UserIdentity, string, error) {
	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserIdentity{}, "", err
	}

	identity := domain.UserIdentity{
		UID:         uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
	}
	if err := s.store.CreateUser(ctx, identity, string(hash)); err != nil {
		return domain.UserIdentity{}, "", err
	}
	if err := s.stats.EnsureUser(ctx, identity); err != nil {
		return domain.UserIdentity{}, "", err
	}

	token, err := s.issueToken(identity)
	if err != nil {
		return domain.UserIdentity{}, "", err
	}
	s.setCurrent(&identity)
	return identity, token, nil
}

// Login verifies credentials and signs the user in.
func (s *Service) Login(ctx context.Context, email, password string) (domain.UserIdentity, string, error) {
	identity, hash, err := s.store.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return domain.UserIdentity{}, "", domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.UserIdentity{}, "", domain.ErrInvalidCredentials
	}

	// The stats record is created lazily for accounts that predate it.
	if err := s.stats.EnsureUser(ctx, identity); err != nil {
		return domain.UserIdentity{}, "", err
	}

	token, err := s.issueToken(identity)
	if err != nil {
		return domain.UserIdentity{}, "", err
	}
	s.setCurrent(&identity)
	return identity, token, nil
}

// Logout clears the current identity and notifies subscribers.
func (s *Service) Logout() {
	s.setCurrent(nil)
}

// Subscribe registers a handler for auth changes. The handler is invoked
// immediately with the current identity; the returned func unsubscribes.
func (s *Service) Subscribe(handler Handler) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = handler
	current := s.current
	s.mu.Unlock()

	handler(current)

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Verify parses and validates a bearer token.
func (s *Service) Verify(token string) (domain.UserIdentity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !parsed.Valid {
		return domain.UserIdentity{}, domain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return domain.UserIdentity{}, domain.ErrInvalidToken
	}
	uid, _ := claims["sub"].(string)
	if uid == "" {
		return domain.UserIdentity{}, domain.ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return domain.UserIdentity{UID: uid, Email: email, DisplayName: name}, nil
}

func (s *Service) issueToken(identity domain.UserIdentity) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   identity.UID,
		"email": identity.Email,
		"name":  identity.DisplayName,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) setCurrent(identity *domain.UserIdentity) {
	s.mu.Lock()
	s.current = identity
	handlers := make([]Handler, 0, len(s.subscribers))
	for _, h := range s.subscribers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(identity)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
