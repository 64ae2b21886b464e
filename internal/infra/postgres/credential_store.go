package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"rich-trivia-service/internal/domain"
)

// CredentialStore persists login credentials in the credentials table.
type CredentialStore struct {
	pool *pgxpool.Pool
}

func NewCredentialStore(pool *pgxpool.Pool) *CredentialStore {
	return &CredentialStore{pool: pool}
}

func (s *CredentialStore) CreateUser(ctx context.Context, identity domain.UserIdentity, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO credentials (uid, email, display_name, password_hash)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO NOTHING`,
		identity.UID, identity.Email, identity.DisplayName, passwordHash)
	if err != nil {
		return fmt.Errorf("create user %s: %w", identity.Email, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEmailTaken
	}
	return nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (domain.UserIdentity, string, error) {
	identity := domain.UserIdentity{Email: email}
	var hash string
	err := s.pool.QueryRow(ctx,
		`SELECT uid, COALESCE(display_name, ''), password_hash FROM credentials WHERE email = $1`, email).
		Scan(&identity.UID, &identity.DisplayName, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserIdentity{}, "", domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserIdentity{}, "", fmt.Errorf("find user %s: %w", email, err)
	}
	return identity, hash, nil
}
