package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Tetsu-is/social-graph/internal/auth"
	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/Tetsu-is/social-graph/internal/repository"
	"go.uber.org/zap"
)

const (
	maxUsernameLength = 150
	maxNameLength     = 150
	maxEmailLength    = 254
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

func validEmail(email string) bool {
	if utf8.RuneCountInString(email) > maxEmailLength {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Register creates an account and its empty profile. Username and email
// must be free and the password must match its confirmation; every
// failing field is reported in one ValidationError and nothing is
// created.
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Account, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	verr := domain.NewValidationError()
	switch {
	case username == "":
		verr.Add("username", domain.CodeRequired)
	case utf8.RuneCountInString(username) > maxUsernameLength:
		verr.Add("username", domain.CodeTooLong)
	case !usernamePattern.MatchString(username):
		verr.Add("username", domain.CodeInvalid)
	}
	switch {
	case email == "":
		verr.Add("email", domain.CodeRequired)
	case !validEmail(email):
		verr.Add("email", domain.CodeInvalid)
	}
	if req.Password == "" {
		verr.Add("password", domain.CodeRequired)
	}
	if req.ConfirmPassword == "" {
		verr.Add("confirm_password", domain.CodeRequired)
	}

	if _, bad := verr.Fields["username"]; !bad {
		taken, err := s.accounts.UsernameExists(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken {
			verr.Add("username", domain.CodeUsernameTaken)
		}
	}
	if _, bad := verr.Fields["email"]; !bad {
		taken, err := s.accounts.EmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			verr.Add("email", domain.CodeEmailTaken)
		}
	}
	if req.Password != "" && req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		verr.Add("confirm_password", domain.CodePasswordMismatch)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.CreateAccount(ctx, domain.Account{ID: id, Username: username, Email: email}, hashed)
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return nil, domain.FieldError("username", domain.CodeUsernameTaken)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return nil, domain.FieldError("email", domain.CodeEmailTaken)
	case err != nil:
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account registered", zap.String("account_id", account.ID), zap.String("username", account.Username))
	return account, nil
}

// Authenticate checks a username (or email) and password pair. Any
// mismatch is reported as ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, usernameOrEmail, password string) (*domain.Account, error) {
	account, err := s.accounts.GetAccountByUsername(ctx, usernameOrEmail)
	if errors.Is(err, domain.ErrNotFound) && strings.Contains(usernameOrEmail, "@") {
		account, err = s.accounts.GetAccountByEmail(ctx, usernameOrEmail)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	} else if err != nil {
		return nil, err
	}

	creds, err := s.accounts.GetAccountAuth(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	ok, err := s.hasher.Verify(creds.HashedPassword, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return account, nil
}

// Login authenticates and opens a server-side session whose id is bound
// into the returned token.
func (s *Service) Login(ctx context.Context, usernameOrEmail, password string) (*domain.LoginResponse, error) {
	account, err := s.Authenticate(ctx, usernameOrEmail, password)
	if err != nil {
		return nil, err
	}

	sessionID, err := newID()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(s.tokens.TTL())
	if err := s.sessions.CreateSession(ctx, domain.Session{ID: sessionID, AccountID: account.ID, ExpiresAt: expiresAt}); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.tokens.GenerateToken(account.ID, sessionID, expiresAt)
	if err != nil {
		return nil, err
	}

	s.logger.Info("logged in", zap.String("account_id", account.ID))
	return &domain.LoginResponse{Account: account, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *Service) Logout(ctx context.Context, actor domain.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := s.sessions.DeleteSession(ctx, actor.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("logged out", zap.String("account_id", actor.AccountID))
	return nil
}

// ResolveToken verifies the token signature and that its session is still
// open.
func (s *Service) ResolveToken(ctx context.Context, token string) (domain.Actor, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	sess, err := s.sessions.GetSession(ctx, claims.SessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Actor{}, fmt.Errorf("%w: session ended", domain.ErrUnauthenticated)
	} else if err != nil {
		return domain.Actor{}, err
	}
	if sess.AccountID != claims.Subject || !sess.ExpiresAt.After(s.now()) {
		return domain.Actor{}, fmt.Errorf("%w: session ended", domain.ErrUnauthenticated)
	}

	return domain.Actor{AccountID: sess.AccountID, SessionID: sess.ID}, nil
}

// RequestPasswordReset issues a reset token for the account with this
// email. Unknown emails succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.GetAccountByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Debug("password reset for unknown email")
		return nil
	} else if err != nil {
		return err
	}

	token, hash, err := auth.NewResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	err = s.sessions.CreateResetToken(ctx, domain.PasswordResetToken{
		TokenHash: hash,
		AccountID: account.ID,
		ExpiresAt: s.now().Add(s.resetTTL),
	})
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	return s.mailer.SendPasswordReset(ctx, *account, token)
}

func (s *Service) resetToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	t, err := s.sessions.GetResetToken(ctx, auth.HashResetToken(token))
	if err != nil {
		return nil, err
	}
	if !t.ExpiresAt.After(s.now()) {
		return nil, repository.ErrResetTokenNotFound
	}
	return t, nil
}

// CheckPasswordResetToken reports ErrNotFound for unknown or expired
// tokens.
func (s *Service) CheckPasswordResetToken(ctx context.Context, token string) error {
	_, err := s.resetToken(ctx, token)
	return err
}

// CompletePasswordReset sets a new password, consumes the token and ends
// all sessions of the account.
func (s *Service) CompletePasswordReset(ctx context.Context, token string, req domain.PasswordResetCompleteRequest) error {
	t, err := s.resetToken(ctx, token)
	if err != nil {
		return err
	}

	verr := domain.NewValidationError()
	if req.Password == "" {
		verr.Add("password", domain.CodeRequired)
	}
	if req.ConfirmPassword == "" {
		verr.Add("confirm_password", domain.CodeRequired)
	} else if req.Password != req.ConfirmPassword {
		verr.Add("confirm_password", domain.CodePasswordMismatch)
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.ResetPassword(ctx, t.AccountID, t.TokenHash, hashed); err != nil {
		return err
	}

	s.logger.Info("password reset", zap.String("account_id", t.AccountID))
	return nil
}

// DeleteAccount removes the actor's own account and everything that
// references it.
func (s *Service) DeleteAccount(ctx context.Context, actor domain.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := s.accounts.DeleteAccount(ctx, actor.AccountID); err != nil {
		return err
	}
	s.logger.Info("account deleted", zap.String("account_id", actor.AccountID))
	return nil
}
