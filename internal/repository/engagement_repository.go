package repository

import (
	"context"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commentColumns = "id, account_id, post_id, body, is_reply, reply_id, created_at"

type CommentRepository struct {
	conn *pgxpool.Pool
}

func NewCommentRepository(conn *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{conn: conn}
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	err := row.Scan(&c.ID, &c.AccountID, &c.PostID, &c.Body, &c.IsReply, &c.ReplyID, &c.CreatedAt)
	if noRows(err) {
		return nil, domain.ErrCommentNotFound
	} else if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) CreateComment(ctx context.Context, c domain.Comment) (*domain.Comment, error) {
	created, err := scanComment(r.conn.QueryRow(ctx,
		`INSERT INTO comments (id, account_id, post_id, body, is_reply, reply_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+commentColumns,
		c.ID, c.AccountID, c.PostID, c.Body, c.IsReply, c.ReplyID,
	))
	if err != nil && foreignKeyViolation(err) {
		return nil, domain.ErrNotFound
	}
	return created, err
}

// GetComment returns the comment only if it belongs to postID.
func (r *CommentRepository) GetComment(ctx context.Context, postID, commentID string) (*domain.Comment, error) {
	return scanComment(r.conn.QueryRow(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id = $1 AND post_id = $2",
		commentID, postID,
	))
}

func (r *CommentRepository) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE post_id = $1 ORDER BY created_at DESC, id DESC",
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

// DeleteComment removes the comment and, through the self-referencing
// cascade, every reply pointing at it.
func (r *CommentRepository) DeleteComment(ctx context.Context, id string) error {
	ct, err := r.conn.Exec(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

type LikeRepository struct {
	conn *pgxpool.Pool
}

func NewLikeRepository(conn *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{conn: conn}
}

// ToggleLike removes the (account, post) like if present and creates it
// otherwise. The unique (account, post) constraint keeps concurrent
// toggles from producing a second row.
func (r *LikeRepository) ToggleLike(ctx context.Context, id, accountID, postID string) (domain.LikeState, error) {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, "DELETE FROM likes WHERE account_id = $1 AND post_id = $2", accountID, postID)
	if err != nil {
		return "", err
	}

	state := domain.Unliked
	if ct.RowsAffected() == 0 {
		_, err := tx.Exec(ctx,
			`INSERT INTO likes (id, account_id, post_id) VALUES ($1, $2, $3)
			 ON CONFLICT (account_id, post_id) DO NOTHING`,
			id, accountID, postID,
		)
		if err != nil {
			if foreignKeyViolation(err) {
				return "", domain.ErrPostNotFound
			}
			return "", err
		}
		state = domain.Liked
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return state, nil
}

func (r *LikeRepository) LikeExists(ctx context.Context, accountID, postID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM likes WHERE account_id = $1 AND post_id = $2)",
		accountID, postID,
	).Scan(&exists)
	return exists, err
}

func (r *LikeRepository) CountLikes(ctx context.Context, postID string) (int64, error) {
	var n int64
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM likes WHERE post_id = $1", postID).Scan(&n)
	return n, err
}
