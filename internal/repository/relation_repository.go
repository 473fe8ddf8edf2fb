package repository

import (
	"context"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RelationRepository struct {
	conn *pgxpool.Pool
}

func NewRelationRepository(conn *pgxpool.Pool) *RelationRepository {
	return &RelationRepository{conn: conn}
}

// CreateRelation inserts fromID -> toID. The unique (from, to) constraint
// turns a concurrent duplicate into ErrDuplicateRelation.
func (r *RelationRepository) CreateRelation(ctx context.Context, id, fromID, toID string) (*domain.Relation, error) {
	var rel domain.Relation
	err := r.conn.QueryRow(ctx,
		`INSERT INTO relations (id, from_account_id, to_account_id) VALUES ($1, $2, $3)
		 RETURNING id, from_account_id, to_account_id, created_at`,
		id, fromID, toID,
	).Scan(&rel.ID, &rel.FromAccountID, &rel.ToAccountID, &rel.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == constraintRelation {
			return nil, ErrDuplicateRelation
		}
		if foreignKeyViolation(err) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	return &rel, nil
}

// DeleteRelation reports whether a relation was removed.
func (r *RelationRepository) DeleteRelation(ctx context.Context, fromID, toID string) (bool, error) {
	ct, err := r.conn.Exec(ctx,
		"DELETE FROM relations WHERE from_account_id = $1 AND to_account_id = $2",
		fromID, toID,
	)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *RelationRepository) RelationExists(ctx context.Context, fromID, toID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM relations WHERE from_account_id = $1 AND to_account_id = $2)",
		fromID, toID,
	).Scan(&exists)
	return exists, err
}

func (r *RelationRepository) GetFollowers(ctx context.Context, accountID string) ([]domain.Account, error) {
	return r.listAccounts(ctx,
		`SELECT a.id, a.username, a.email, a.first_name, a.last_name, a.created_at, a.updated_at
		 FROM accounts a
		 INNER JOIN relations r ON a.id = r.from_account_id
		 WHERE r.to_account_id = $1
		 ORDER BY r.created_at DESC`,
		accountID,
	)
}

func (r *RelationRepository) GetFollowees(ctx context.Context, accountID string) ([]domain.Account, error) {
	return r.listAccounts(ctx,
		`SELECT a.id, a.username, a.email, a.first_name, a.last_name, a.created_at, a.updated_at
		 FROM accounts a
		 INNER JOIN relations r ON a.id = r.to_account_id
		 WHERE r.from_account_id = $1
		 ORDER BY r.created_at DESC`,
		accountID,
	)
}

func (r *RelationRepository) CountFollowers(ctx context.Context, accountID string) (int64, error) {
	var n int64
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM relations WHERE to_account_id = $1", accountID).Scan(&n)
	return n, err
}

func (r *RelationRepository) CountFollowees(ctx context.Context, accountID string) (int64, error) {
	var n int64
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM relations WHERE from_account_id = $1", accountID).Scan(&n)
	return n, err
}

func (r *RelationRepository) listAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}
