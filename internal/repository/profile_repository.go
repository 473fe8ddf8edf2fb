package repository

import (
	"context"
	"fmt"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = "account_id, age, bio, address"

type ProfileRepository struct {
	conn *pgxpool.Pool
}

func NewProfileRepository(conn *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.AccountID, &p.Age, &p.Bio, &p.Address)
	if noRows(err) {
		return nil, fmt.Errorf("profile %w", domain.ErrNotFound)
	} else if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetProfile(ctx context.Context, accountID string) (*domain.Profile, error) {
	return scanProfile(r.conn.QueryRow(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE account_id = $1", accountID,
	))
}
