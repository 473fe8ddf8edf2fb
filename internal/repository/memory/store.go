// Package memory is an in-process store with the same constraint and
// cascade behavior as the Postgres schema. It backs `storage: memory` and
// the service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/Tetsu-is/social-graph/internal/repository"
)

type accountRow struct {
	account        domain.Account
	hashedPassword string
}

type postRow struct {
	post domain.Post
	seq  uint64
}

type commentRow struct {
	comment domain.Comment
	seq     uint64
}

type relationRow struct {
	rel domain.Relation
	seq uint64
}

type Store struct {
	mu  sync.Mutex
	now func() time.Time
	seq uint64

	accounts    map[string]*accountRow
	profiles    map[string]*domain.Profile
	relations   map[[2]string]*relationRow
	posts       map[string]*postRow
	comments    map[string]*commentRow
	likes       map[[2]string]domain.Like
	sessions    map[string]domain.Session
	resetTokens map[string]domain.PasswordResetToken
}

type Option func(*Store)

// WithClock replaces time.Now for created_at/updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:         time.Now,
		accounts:    map[string]*accountRow{},
		profiles:    map[string]*domain.Profile{},
		relations:   map[[2]string]*relationRow{},
		posts:       map[string]*postRow{},
		comments:    map[string]*commentRow{},
		likes:       map[[2]string]domain.Like{},
		sessions:    map[string]domain.Session{},
		resetTokens: map[string]domain.PasswordResetToken{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) next() uint64 {
	s.seq++
	return s.seq
}

// ============================================
// Accounts & Profiles
// ============================================

func (s *Store) CreateAccount(_ context.Context, account domain.Account, hashedPassword string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.accounts {
		if row.account.Username == account.Username {
			return nil, repository.ErrDuplicateUsername
		}
		if row.account.Email == account.Email {
			return nil, repository.ErrDuplicateEmail
		}
	}

	now := s.now()
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[account.ID] = &accountRow{account: account, hashedPassword: hashedPassword}
	s.profiles[account.ID] = &domain.Profile{AccountID: account.ID}

	created := account
	return &created, nil
}

func (s *Store) GetAccountByID(_ context.Context, id string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a := row.account
	return &a, nil
}

func (s *Store) findAccount(match func(domain.Account) bool) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.accounts {
		if match(row.account) {
			a := row.account
			return &a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (s *Store) GetAccountByUsername(_ context.Context, username string) (*domain.Account, error) {
	return s.findAccount(func(a domain.Account) bool { return a.Username == username })
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	return s.findAccount(func(a domain.Account) bool { return a.Email == email })
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.GetAccountByUsername(ctx, username)
	return err == nil, nil
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetAccountByEmail(ctx, email)
	return err == nil, nil
}

func (s *Store) GetAccountAuth(_ context.Context, id string) (*domain.AccountAuth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &domain.AccountAuth{AccountID: id, HashedPassword: row.hashedPassword}, nil
}

func (s *Store) UpdateAccountProfile(_ context.Context, account domain.Account, profile domain.Profile) (*domain.Account, *domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.accounts[account.ID]
	if !ok {
		return nil, nil, domain.ErrAccountNotFound
	}
	for id, other := range s.accounts {
		if id != account.ID && other.account.Email == account.Email {
			return nil, nil, repository.ErrDuplicateEmail
		}
	}

	row.account.FirstName = account.FirstName
	row.account.LastName = account.LastName
	row.account.Email = account.Email
	row.account.UpdatedAt = s.now()

	p := s.profiles[account.ID]
	p.Age = profile.Age
	p.Bio = profile.Bio
	p.Address = profile.Address

	a, pc := row.account, *p
	return &a, &pc, nil
}

func (s *Store) GetProfile(_ context.Context, accountID string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[accountID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	pc := *p
	return &pc, nil
}

func (s *Store) ResetPassword(_ context.Context, accountID, tokenHash, hashedPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.resetTokens[tokenHash]
	if !ok || t.AccountID != accountID {
		return repository.ErrResetTokenNotFound
	}
	row, ok := s.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}

	delete(s.resetTokens, tokenHash)
	row.hashedPassword = hashedPassword
	row.account.UpdatedAt = s.now()
	for id, sess := range s.sessions {
		if sess.AccountID == accountID {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}

	delete(s.accounts, id)
	delete(s.profiles, id)
	for key := range s.relations {
		if key[0] == id || key[1] == id {
			delete(s.relations, key)
		}
	}
	for postID, row := range s.posts {
		if row.post.AccountID == id {
			s.deletePostLocked(postID)
		}
	}
	for commentID, row := range s.comments {
		if row.comment.AccountID == id {
			s.deleteCommentLocked(commentID)
		}
	}
	for key := range s.likes {
		if key[0] == id {
			delete(s.likes, key)
		}
	}
	for sid, sess := range s.sessions {
		if sess.AccountID == id {
			delete(s.sessions, sid)
		}
	}
	for h, t := range s.resetTokens {
		if t.AccountID == id {
			delete(s.resetTokens, h)
		}
	}
	return nil
}

// ============================================
// Relations
// ============================================

func (s *Store) CreateRelation(_ context.Context, id, fromID, toID string) (*domain.Relation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[fromID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	if _, ok := s.accounts[toID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	key := [2]string{fromID, toID}
	if _, ok := s.relations[key]; ok {
		return nil, repository.ErrDuplicateRelation
	}

	rel := domain.Relation{ID: id, FromAccountID: fromID, ToAccountID: toID, CreatedAt: s.now()}
	s.relations[key] = &relationRow{rel: rel, seq: s.next()}
	return &rel, nil
}

func (s *Store) DeleteRelation(_ context.Context, fromID, toID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{fromID, toID}
	if _, ok := s.relations[key]; !ok {
		return false, nil
	}
	delete(s.relations, key)
	return true, nil
}

func (s *Store) RelationExists(_ context.Context, fromID, toID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.relations[[2]string{fromID, toID}]
	return ok, nil
}

// relatedAccounts lists the accounts at the other end of relations where
// accountID sits at index side, newest relation first.
func (s *Store) relatedAccounts(accountID string, side int) []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []*relationRow
	for key, row := range s.relations {
		if key[side] == accountID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	accounts := []domain.Account{}
	for _, row := range rows {
		otherID := row.rel.FromAccountID
		if side == 0 {
			otherID = row.rel.ToAccountID
		}
		accounts = append(accounts, s.accounts[otherID].account)
	}
	return accounts
}

func (s *Store) GetFollowers(_ context.Context, accountID string) ([]domain.Account, error) {
	return s.relatedAccounts(accountID, 1), nil
}

func (s *Store) GetFollowees(_ context.Context, accountID string) ([]domain.Account, error) {
	return s.relatedAccounts(accountID, 0), nil
}

func (s *Store) CountFollowers(ctx context.Context, accountID string) (int64, error) {
	return int64(len(s.relatedAccounts(accountID, 1))), nil
}

func (s *Store) CountFollowees(ctx context.Context, accountID string) (int64, error) {
	return int64(len(s.relatedAccounts(accountID, 0))), nil
}

// ============================================
// Posts
// ============================================

func (s *Store) CreatePost(_ context.Context, post domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[post.AccountID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	now := s.now()
	post.CreatedAt = now
	post.UpdatedAt = now
	s.posts[post.ID] = &postRow{post: post, seq: s.next()}

	created := post
	return &created, nil
}

func (s *Store) GetPost(_ context.Context, id string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	p := row.post
	return &p, nil
}

func (s *Store) GetPostWithSlug(ctx context.Context, id, slug string) (*domain.Post, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Slug != slug {
		return nil, domain.ErrPostNotFound
	}
	return p, nil
}

func (s *Store) UpdatePost(_ context.Context, id, caption, slug string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	row.post.Caption = caption
	row.post.Slug = slug
	row.post.UpdatedAt = s.now()

	p := row.post
	return &p, nil
}

func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	s.deletePostLocked(id)
	return nil
}

func (s *Store) deletePostLocked(id string) {
	delete(s.posts, id)
	for commentID, row := range s.comments {
		if row.comment.PostID == id {
			delete(s.comments, commentID)
		}
	}
	for key := range s.likes {
		if key[1] == id {
			delete(s.likes, key)
		}
	}
}

func (s *Store) listPosts(match func(domain.Post) bool) []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []*postRow
	for _, row := range s.posts {
		if match(row.post) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	posts := []domain.Post{}
	for _, row := range rows {
		posts = append(posts, row.post)
	}
	return posts
}

func (s *Store) ListPosts(_ context.Context) ([]domain.Post, error) {
	return s.listPosts(func(domain.Post) bool { return true }), nil
}

func (s *Store) SearchPosts(_ context.Context, query string) ([]domain.Post, error) {
	return s.listPosts(func(p domain.Post) bool { return strings.Contains(p.Slug, query) }), nil
}

func (s *Store) ListPostsByAccount(_ context.Context, accountID string) ([]domain.Post, error) {
	return s.listPosts(func(p domain.Post) bool { return p.AccountID == accountID }), nil
}

// ============================================
// Comments & Likes
// ============================================

func (s *Store) CreateComment(_ context.Context, c domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[c.AccountID]; !ok {
		return nil, domain.ErrNotFound
	}
	if _, ok := s.posts[c.PostID]; !ok {
		return nil, domain.ErrNotFound
	}
	if c.ReplyID != nil {
		if _, ok := s.comments[*c.ReplyID]; !ok {
			return nil, domain.ErrNotFound
		}
	}

	c.CreatedAt = s.now()
	s.comments[c.ID] = &commentRow{comment: c, seq: s.next()}

	created := c
	return &created, nil
}

func (s *Store) GetComment(_ context.Context, postID, commentID string) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.comments[commentID]
	if !ok || row.comment.PostID != postID {
		return nil, domain.ErrCommentNotFound
	}
	c := row.comment
	return &c, nil
}

func (s *Store) ListComments(_ context.Context, postID string) ([]domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []*commentRow
	for _, row := range s.comments {
		if row.comment.PostID == postID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	comments := []domain.Comment{}
	for _, row := range rows {
		comments = append(comments, row.comment)
	}
	return comments, nil
}

func (s *Store) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	s.deleteCommentLocked(id)
	return nil
}

func (s *Store) deleteCommentLocked(id string) {
	if _, ok := s.comments[id]; !ok {
		return
	}
	delete(s.comments, id)
	for replyID, row := range s.comments {
		if row.comment.ReplyID != nil && *row.comment.ReplyID == id {
			s.deleteCommentLocked(replyID)
		}
	}
}

func (s *Store) ToggleLike(_ context.Context, id, accountID, postID string) (domain.LikeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return "", domain.ErrPostNotFound
	}
	key := [2]string{accountID, postID}
	if _, ok := s.likes[key]; ok {
		delete(s.likes, key)
		return domain.Unliked, nil
	}
	s.likes[key] = domain.Like{ID: id, AccountID: accountID, PostID: postID, CreatedAt: s.now()}
	return domain.Liked, nil
}

func (s *Store) LikeExists(_ context.Context, accountID, postID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.likes[[2]string{accountID, postID}]
	return ok, nil
}

func (s *Store) CountLikes(_ context.Context, postID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for key := range s.likes {
		if key[1] == postID {
			n++
		}
	}
	return n, nil
}

// ============================================
// Sessions & Reset Tokens
// ============================================

func (s *Store) CreateSession(_ context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[sess.AccountID]; !ok {
		return domain.ErrAccountNotFound
	}
	sess.CreatedAt = s.now()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *Store) CreateResetToken(_ context.Context, t domain.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[t.AccountID]; !ok {
		return domain.ErrAccountNotFound
	}
	t.CreatedAt = s.now()
	s.resetTokens[t.TokenHash] = t
	return nil
}

func (s *Store) GetResetToken(_ context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.resetTokens[tokenHash]
	if !ok {
		return nil, repository.ErrResetTokenNotFound
	}
	return &t, nil
}
