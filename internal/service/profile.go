package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/Tetsu-is/social-graph/internal/repository"
	"go.uber.org/zap"
)

const (
	maxAge           = 32767
	maxAddressLength = 256
)

// ViewProfile is readable by anyone; IsFollowing is false for anonymous
// callers.
func (s *Service) ViewProfile(ctx context.Context, actor domain.Actor, accountID string) (*domain.ProfileView, error) {
	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListPostsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	following, err := s.IsFollowing(ctx, actor, accountID)
	if err != nil {
		return nil, err
	}
	followers, err := s.relations.CountFollowers(ctx, accountID)
	if err != nil {
		return nil, err
	}
	followees, err := s.relations.CountFollowees(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &domain.ProfileView{
		Account:        account.Public(),
		Profile:        *profile,
		Posts:          posts,
		IsFollowing:    following,
		FollowersCount: followers,
		FollowingCount: followees,
	}, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// EditProfile is self-service only: the actor may edit nothing but its
// own account and profile.
func (s *Service) EditProfile(ctx context.Context, actor domain.Actor, accountID string, req domain.EditProfileRequest) (*domain.Account, *domain.Profile, error) {
	if err := authorizeOwner(actor, accountID); err != nil {
		return nil, nil, err
	}

	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	email := strings.TrimSpace(req.Email)
	bio := blankToNil(req.Bio)
	address := blankToNil(req.Address)

	verr := domain.NewValidationError()
	if utf8.RuneCountInString(req.FirstName) > maxNameLength {
		verr.Add("first_name", domain.CodeTooLong)
	}
	if utf8.RuneCountInString(req.LastName) > maxNameLength {
		verr.Add("last_name", domain.CodeTooLong)
	}
	switch {
	case email == "":
		verr.Add("email", domain.CodeRequired)
	case !validEmail(email):
		verr.Add("email", domain.CodeInvalid)
	case email != account.Email:
		other, err := s.accounts.GetAccountByEmail(ctx, email)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, nil, err
		}
		if other != nil && other.ID != accountID {
			verr.Add("email", domain.CodeEmailTaken)
		}
	}
	switch {
	case req.Age == nil:
		verr.Add("age", domain.CodeRequired)
	case *req.Age < 0 || *req.Age > maxAge:
		verr.Add("age", domain.CodeInvalid)
	}
	if address != nil && utf8.RuneCountInString(*address) > maxAddressLength {
		verr.Add("address", domain.CodeTooLong)
	}
	if err := verr.OrNil(); err != nil {
		return nil, nil, err
	}

	account.FirstName = req.FirstName
	account.LastName = req.LastName
	account.Email = email
	profile := domain.Profile{AccountID: accountID, Age: *req.Age, Bio: bio, Address: address}

	updated, p, err := s.accounts.UpdateAccountProfile(ctx, *account, profile)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, nil, domain.FieldError("email", domain.CodeEmailTaken)
	} else if err != nil {
		return nil, nil, err
	}

	s.logger.Info("profile edited", zap.String("account_id", accountID))
	return updated, p, nil
}
