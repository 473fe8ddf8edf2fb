package repository

import (
	"context"
	"strings"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postColumns = "id, account_id, caption, slug, created_at, updated_at"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PostRepository struct {
	conn *pgxpool.Pool
}

func NewPostRepository(conn *pgxpool.Pool) *PostRepository {
	return &PostRepository{conn: conn}
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.ID, &p.AccountID, &p.Caption, &p.Slug, &p.CreatedAt, &p.UpdatedAt)
	if noRows(err) {
		return nil, domain.ErrPostNotFound
	} else if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepository) CreatePost(ctx context.Context, post domain.Post) (*domain.Post, error) {
	created, err := scanPost(r.conn.QueryRow(ctx,
		"INSERT INTO posts (id, account_id, caption, slug) VALUES ($1, $2, $3, $4) RETURNING "+postColumns,
		post.ID, post.AccountID, post.Caption, post.Slug,
	))
	if err != nil && foreignKeyViolation(err) {
		return nil, domain.ErrAccountNotFound
	}
	return created, err
}

func (r *PostRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	return scanPost(r.conn.QueryRow(ctx, "SELECT "+postColumns+" FROM posts WHERE id = $1", id))
}

// GetPostWithSlug looks a post up by its (id, slug) pair. A wrong slug is
// reported as not found.
func (r *PostRepository) GetPostWithSlug(ctx context.Context, id, slug string) (*domain.Post, error) {
	return scanPost(r.conn.QueryRow(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = $1 AND slug = $2", id, slug,
	))
}

func (r *PostRepository) UpdatePost(ctx context.Context, id, caption, slug string) (*domain.Post, error) {
	return scanPost(r.conn.QueryRow(ctx,
		`UPDATE posts SET caption = $2, slug = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+postColumns,
		id, caption, slug,
	))
}

// DeletePost removes the post together with its comments and likes.
func (r *PostRepository) DeletePost(ctx context.Context, id string) error {
	ct, err := r.conn.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return r.listPosts(ctx,
		"SELECT "+postColumns+" FROM posts ORDER BY created_at DESC, id DESC",
	)
}

// SearchPosts matches substrings of the slug, not of the caption.
func (r *PostRepository) SearchPosts(ctx context.Context, query string) ([]domain.Post, error) {
	return r.listPosts(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE slug LIKE '%' || $1 || '%' ESCAPE '\'
		 ORDER BY created_at DESC, id DESC`,
		likeEscaper.Replace(query),
	)
}

func (r *PostRepository) ListPostsByAccount(ctx context.Context, accountID string) ([]domain.Post, error) {
	return r.listPosts(ctx,
		"SELECT "+postColumns+" FROM posts WHERE account_id = $1 ORDER BY created_at DESC, id DESC",
		accountID,
	)
}

func (r *PostRepository) listPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}
