package repository

import (
	"context"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = "id, username, email, first_name, last_name, created_at, updated_at"

type AccountRepository struct {
	conn *pgxpool.Pool
}

func NewAccountRepository(conn *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{conn: conn}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.FirstName, &a.LastName, &a.CreatedAt, &a.UpdatedAt)
	if noRows(err) {
		return nil, domain.ErrAccountNotFound
	} else if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAccount inserts the account and its empty profile in one
// transaction, so no account is ever visible without a profile.
func (r *AccountRepository) CreateAccount(ctx context.Context, account domain.Account, hashedPassword string) (*domain.Account, error) {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := scanAccount(tx.QueryRow(ctx,
		`INSERT INTO accounts (id, username, email, first_name, last_name, hashed_password)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+accountColumns,
		account.ID, account.Username, account.Email, account.FirstName, account.LastName, hashedPassword,
	))
	if err != nil {
		return nil, accountConstraintError(err)
	}

	if _, err := tx.Exec(ctx, "INSERT INTO profiles (account_id) VALUES ($1)", created.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, accountConstraintError(err)
	}

	return created, nil
}

func (r *AccountRepository) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	return scanAccount(r.conn.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1", id))
}

func (r *AccountRepository) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return scanAccount(r.conn.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE username = $1", username))
}

func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return scanAccount(r.conn.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE email = $1", email))
}

func (r *AccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)", username).Scan(&exists)
	return exists, err
}

func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)", email).Scan(&exists)
	return exists, err
}

func (r *AccountRepository) GetAccountAuth(ctx context.Context, id string) (*domain.AccountAuth, error) {
	var auth domain.AccountAuth
	err := r.conn.QueryRow(ctx,
		"SELECT id, hashed_password FROM accounts WHERE id = $1", id,
	).Scan(&auth.AccountID, &auth.HashedPassword)
	if noRows(err) {
		return nil, domain.ErrAccountNotFound
	} else if err != nil {
		return nil, err
	}
	return &auth, nil
}

// UpdateAccountProfile writes the editable account fields and the profile
// together.
func (r *AccountRepository) UpdateAccountProfile(ctx context.Context, account domain.Account, profile domain.Profile) (*domain.Account, *domain.Profile, error) {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	updated, err := scanAccount(tx.QueryRow(ctx,
		`UPDATE accounts SET first_name = $2, last_name = $3, email = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+accountColumns,
		account.ID, account.FirstName, account.LastName, account.Email,
	))
	if err != nil {
		return nil, nil, accountConstraintError(err)
	}

	p, err := scanProfile(tx.QueryRow(ctx,
		`UPDATE profiles SET age = $2, bio = $3, address = $4
		 WHERE account_id = $1
		 RETURNING `+profileColumns,
		account.ID, profile.Age, profile.Bio, profile.Address,
	))
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return updated, p, nil
}

// ResetPassword replaces the credential, consumes the reset token and
// ends every session of the account.
func (r *AccountRepository) ResetPassword(ctx context.Context, accountID, tokenHash, hashedPassword string) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		"DELETE FROM password_reset_tokens WHERE token_hash = $1 AND account_id = $2",
		tokenHash, accountID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrResetTokenNotFound
	}

	if _, err := tx.Exec(ctx,
		"UPDATE accounts SET hashed_password = $2, updated_at = NOW() WHERE id = $1",
		accountID, hashedPassword,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM sessions WHERE account_id = $1", accountID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteAccount removes the account. Profile, relations on either side,
// posts, comments, likes and sessions go with it through ON DELETE CASCADE.
func (r *AccountRepository) DeleteAccount(ctx context.Context, id string) error {
	ct, err := r.conn.Exec(ctx, "DELETE FROM accounts WHERE id = $1", id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
