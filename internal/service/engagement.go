package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"go.uber.org/zap"
)

const maxCommentLength = 400

func validateBody(body string) error {
	switch {
	case strings.TrimSpace(body) == "":
		return domain.FieldError("body", domain.CodeRequired)
	case utf8.RuneCountInString(body) > maxCommentLength:
		return domain.FieldError("body", domain.CodeTooLong)
	}
	return nil
}

func (s *Service) AddComment(ctx context.Context, actor domain.Actor, postID, body string) (*domain.Comment, error) {
	return s.addComment(ctx, actor, postID, nil, body)
}

// AddReply answers parentID, which must be a comment on the same post.
// The parent may itself be a reply.
func (s *Service) AddReply(ctx context.Context, actor domain.Actor, postID, parentID, body string) (*domain.Comment, error) {
	return s.addComment(ctx, actor, postID, &parentID, body)
}

func (s *Service) addComment(ctx context.Context, actor domain.Actor, postID string, parentID *string, body string) (*domain.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	if parentID != nil {
		if _, err := s.comments.GetComment(ctx, postID, *parentID); err != nil {
			return nil, err
		}
	}
	if err := validateBody(body); err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.CreateComment(ctx, domain.Comment{
		ID:        id,
		AccountID: actor.AccountID,
		PostID:    postID,
		Body:      body,
		IsReply:   parentID != nil,
		ReplyID:   parentID,
	})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.logger.Info("comment added",
		zap.String("comment_id", comment.ID),
		zap.String("post_id", postID),
		zap.Bool("is_reply", comment.IsReply),
	)
	return comment, nil
}

// ToggleLike likes the post when the actor has not, and unlikes it
// otherwise.
func (s *Service) ToggleLike(ctx context.Context, actor domain.Actor, postID string) (*domain.ToggleLikeResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	state, err := s.likes.ToggleLike(ctx, id, actor.AccountID, postID)
	if err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	count, err := s.likes.CountLikes(ctx, postID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("like toggled", zap.String("post_id", postID), zap.String("state", string(state)))
	return &domain.ToggleLikeResponse{State: state, LikesCount: count}, nil
}
