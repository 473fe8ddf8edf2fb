package repository

import (
	"context"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	conn *pgxpool.Pool
}

func NewSessionRepository(conn *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{conn: conn}
}

func (r *SessionRepository) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.conn.Exec(ctx,
		"INSERT INTO sessions (id, account_id, expires_at) VALUES ($1, $2, $3)",
		s.ID, s.AccountID, s.ExpiresAt,
	)
	return err
}

func (r *SessionRepository) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := r.conn.QueryRow(ctx,
		"SELECT id, account_id, expires_at, created_at FROM sessions WHERE id = $1", id,
	).Scan(&s.ID, &s.AccountID, &s.ExpiresAt, &s.CreatedAt)
	if noRows(err) {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.conn.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	return err
}

func (r *SessionRepository) CreateResetToken(ctx context.Context, t domain.PasswordResetToken) error {
	_, err := r.conn.Exec(ctx,
		"INSERT INTO password_reset_tokens (token_hash, account_id, expires_at) VALUES ($1, $2, $3)",
		t.TokenHash, t.AccountID, t.ExpiresAt,
	)
	return err
}

func (r *SessionRepository) GetResetToken(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	var t domain.PasswordResetToken
	err := r.conn.QueryRow(ctx,
		"SELECT token_hash, account_id, expires_at, created_at FROM password_reset_tokens WHERE token_hash = $1",
		tokenHash,
	).Scan(&t.TokenHash, &t.AccountID, &t.ExpiresAt, &t.CreatedAt)
	if noRows(err) {
		return nil, ErrResetTokenNotFound
	} else if err != nil {
		return nil, err
	}
	return &t, nil
}
