package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"go.uber.org/zap"
)

func validateCaption(caption string) error {
	if strings.TrimSpace(caption) == "" {
		return domain.FieldError("caption", domain.CodeRequired)
	}
	return nil
}

func (s *Service) CreatePost(ctx context.Context, actor domain.Actor, caption string) (*domain.Post, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validateCaption(caption); err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	post, err := s.posts.CreatePost(ctx, domain.Post{
		ID:        id,
		AccountID: actor.AccountID,
		Caption:   caption,
		Slug:      domain.PostSlug(caption),
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.logger.Info("post created", zap.String("post_id", post.ID), zap.String("slug", post.Slug))
	return post, nil
}

// UpdatePost replaces the caption and recomputes the slug from it.
func (s *Service) UpdatePost(ctx context.Context, actor domain.Actor, postID, caption string) (*domain.Post, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authorizePostOwner(actor, post); err != nil {
		return nil, err
	}
	if err := validateCaption(caption); err != nil {
		return nil, err
	}

	updated, err := s.posts.UpdatePost(ctx, postID, caption, domain.PostSlug(caption))
	if err != nil {
		return nil, err
	}

	s.logger.Info("post updated", zap.String("post_id", postID))
	return updated, nil
}

func (s *Service) DeletePost(ctx context.Context, actor domain.Actor, postID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if err := authorizePostOwner(actor, post); err != nil {
		return err
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return err
	}

	s.logger.Info("post deleted", zap.String("post_id", postID))
	return nil
}

// PostDetail fetches by the (id, slug) pair; a slug that does not match
// the post is not found.
func (s *Service) PostDetail(ctx context.Context, actor domain.Actor, postID, slug string) (*domain.PostDetail, error) {
	post, err := s.posts.GetPostWithSlug(ctx, postID, slug)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	count, err := s.likes.CountLikes(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked := false
	if actor.Authenticated() {
		liked, err = s.likes.LikeExists(ctx, actor.AccountID, postID)
		if err != nil {
			return nil, err
		}
	}

	return &domain.PostDetail{Post: *post, Comments: comments, LikesCount: count, IsLiked: liked}, nil
}

// ListPosts returns every post newest first, or the SearchPosts result
// when search is set.
func (s *Service) ListPosts(ctx context.Context, search string) ([]domain.Post, error) {
	if search != "" {
		return s.SearchPosts(ctx, search)
	}
	return s.posts.ListPosts(ctx)
}

// SearchPosts matches query as a case-sensitive substring of the slug,
// not the caption, so text past the slug's source characters is never
// found.
func (s *Service) SearchPosts(ctx context.Context, query string) ([]domain.Post, error) {
	return s.posts.SearchPosts(ctx, query)
}
