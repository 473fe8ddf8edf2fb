// Package service is the application layer. It owns every rule about who
// may do what to accounts, the follow graph, posts, comments and likes;
// storage is reached only through the Store interfaces below.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Tetsu-is/social-graph/internal/auth"
	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AccountStore interface {
	CreateAccount(ctx context.Context, account domain.Account, hashedPassword string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetAccountAuth(ctx context.Context, id string) (*domain.AccountAuth, error)
	UpdateAccountProfile(ctx context.Context, account domain.Account, profile domain.Profile) (*domain.Account, *domain.Profile, error)
	ResetPassword(ctx context.Context, accountID, tokenHash, hashedPassword string) error
	DeleteAccount(ctx context.Context, id string) error
}

type ProfileStore interface {
	GetProfile(ctx context.Context, accountID string) (*domain.Profile, error)
}

type RelationStore interface {
	CreateRelation(ctx context.Context, id, fromID, toID string) (*domain.Relation, error)
	DeleteRelation(ctx context.Context, fromID, toID string) (bool, error)
	RelationExists(ctx context.Context, fromID, toID string) (bool, error)
	GetFollowers(ctx context.Context, accountID string) ([]domain.Account, error)
	GetFollowees(ctx context.Context, accountID string) ([]domain.Account, error)
	CountFollowers(ctx context.Context, accountID string) (int64, error)
	CountFollowees(ctx context.Context, accountID string) (int64, error)
}

type PostStore interface {
	CreatePost(ctx context.Context, post domain.Post) (*domain.Post, error)
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	GetPostWithSlug(ctx context.Context, id, slug string) (*domain.Post, error)
	UpdatePost(ctx context.Context, id, caption, slug string) (*domain.Post, error)
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context) ([]domain.Post, error)
	SearchPosts(ctx context.Context, query string) ([]domain.Post, error)
	ListPostsByAccount(ctx context.Context, accountID string) ([]domain.Post, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c domain.Comment) (*domain.Comment, error)
	GetComment(ctx context.Context, postID, commentID string) (*domain.Comment, error)
	ListComments(ctx context.Context, postID string) ([]domain.Comment, error)
}

type LikeStore interface {
	ToggleLike(ctx context.Context, id, accountID, postID string) (domain.LikeState, error)
	LikeExists(ctx context.Context, accountID, postID string) (bool, error)
	CountLikes(ctx context.Context, postID string) (int64, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	CreateResetToken(ctx context.Context, t domain.PasswordResetToken) error
	GetResetToken(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error)
}

// Mailer delivers password reset tokens.
type Mailer interface {
	SendPasswordReset(ctx context.Context, account domain.Account, token string) error
}

type Stores struct {
	Accounts  AccountStore
	Profiles  ProfileStore
	Relations RelationStore
	Posts     PostStore
	Comments  CommentStore
	Likes     LikeStore
	Sessions  SessionStore
}

type Options struct {
	Hasher        *auth.PasswordHasher
	Tokens        *auth.TokenIssuer
	Mailer        Mailer
	ResetTokenTTL time.Duration
	Logger        *zap.Logger
}

type Service struct {
	accounts  AccountStore
	profiles  ProfileStore
	relations RelationStore
	posts     PostStore
	comments  CommentStore
	likes     LikeStore
	sessions  SessionStore

	hasher   *auth.PasswordHasher
	tokens   *auth.TokenIssuer
	mailer   Mailer
	resetTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func New(stores Stores, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		accounts:  stores.Accounts,
		profiles:  stores.Profiles,
		relations: stores.Relations,
		posts:     stores.Posts,
		comments:  stores.Comments,
		likes:     stores.Likes,
		sessions:  stores.Sessions,
		hasher:    opts.Hasher,
		tokens:    opts.Tokens,
		mailer:    opts.Mailer,
		resetTTL:  opts.ResetTokenTTL,
		logger:    logger.Named("service"),
		now:       time.Now,
	}
}

// newID returns a time-ordered UUID (v7).
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}
