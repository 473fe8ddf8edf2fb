package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/Tetsu-is/social-graph/internal/repository"
	"go.uber.org/zap"
)

// Follow creates actor -> target. Following oneself is allowed.
func (s *Service) Follow(ctx context.Context, actor domain.Actor, targetID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if _, err := s.accounts.GetAccountByID(ctx, targetID); err != nil {
		return err
	}

	exists, err := s.relations.RelationExists(ctx, actor.AccountID, targetID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrAlreadyFollowing
	}

	id, err := newID()
	if err != nil {
		return err
	}
	// a concurrent follow may still win between the check and the insert
	if _, err := s.relations.CreateRelation(ctx, id, actor.AccountID, targetID); err != nil {
		if errors.Is(err, repository.ErrDuplicateRelation) {
			return domain.ErrAlreadyFollowing
		}
		return fmt.Errorf("create relation: %w", err)
	}

	s.logger.Info("followed", zap.String("from", actor.AccountID), zap.String("to", targetID))
	return nil
}

func (s *Service) Unfollow(ctx context.Context, actor domain.Actor, targetID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if _, err := s.accounts.GetAccountByID(ctx, targetID); err != nil {
		return err
	}

	deleted, err := s.relations.DeleteRelation(ctx, actor.AccountID, targetID)
	if err != nil {
		return fmt.Errorf("delete relation: %w", err)
	}
	if !deleted {
		return domain.ErrNotFollowing
	}

	s.logger.Info("unfollowed", zap.String("from", actor.AccountID), zap.String("to", targetID))
	return nil
}

// IsFollowing is false for anonymous actors.
func (s *Service) IsFollowing(ctx context.Context, actor domain.Actor, targetID string) (bool, error) {
	if !actor.Authenticated() {
		return false, nil
	}
	return s.relations.RelationExists(ctx, actor.AccountID, targetID)
}

func (s *Service) Followers(ctx context.Context, accountID string) ([]domain.Account, error) {
	if _, err := s.accounts.GetAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.relations.GetFollowers(ctx, accountID)
}

func (s *Service) Following(ctx context.Context, accountID string) ([]domain.Account, error) {
	if _, err := s.accounts.GetAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.relations.GetFollowees(ctx, accountID)
}
