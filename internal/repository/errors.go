package repository

import (
	"errors"
	"fmt"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDuplicateUsername = errors.New("username is already used")
	ErrDuplicateEmail    = errors.New("email is already used")
	ErrDuplicateRelation = errors.New("relation already exists")

	ErrSessionNotFound    = fmt.Errorf("session %w", domain.ErrNotFound)
	ErrResetTokenNotFound = fmt.Errorf("reset token %w", domain.ErrNotFound)
)

const (
	constraintUsername = "accounts_username_key"
	constraintEmail    = "accounts_email_key"
	constraintRelation = "relations_from_to_key"
)

func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// noRows also treats a malformed uuid as a missing row: ids come straight
// from request paths.
func noRows(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}

func foreignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

// accountConstraintError maps a unique violation on accounts to the
// matching duplicate error.
func accountConstraintError(err error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case constraintUsername:
		return ErrDuplicateUsername
	case constraintEmail:
		return ErrDuplicateEmail
	}
	return err
}
