package domain

import "time"

// ============================================
// Domain Models
// ============================================

type Account struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicAccount is an Account as shown to other callers. It omits email.
type PublicAccount struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:        a.ID,
		Username:  a.Username,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		CreatedAt: a.CreatedAt,
	}
}

func PublicAccounts(accounts []Account) []PublicAccount {
	out := make([]PublicAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Public())
	}
	return out
}

type AccountAuth struct {
	AccountID      string `json:"-"`
	HashedPassword string `json:"-"`
}

// Profile is the 1:1 extension of an Account. It is created in the same
// transaction as the account and removed with it.
type Profile struct {
	AccountID string  `json:"account_id"`
	Age       int     `json:"age"`
	Bio       *string `json:"bio"`
	Address   *string `json:"address"`
}

// Relation is a directed follow edge: FromAccountID follows ToAccountID.
type Relation struct {
	ID            string    `json:"id"`
	FromAccountID string    `json:"from_account_id"`
	ToAccountID   string    `json:"to_account_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type Post struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Caption   string    `json:"caption"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment on a post. When IsReply is set, ReplyID points at the comment
// being answered.
type Comment struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	PostID    string    `json:"post_id"`
	Body      string    `json:"body"`
	IsReply   bool      `json:"is_reply"`
	ReplyID   *string   `json:"reply_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Like struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	ID        string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type PasswordResetToken struct {
	TokenHash string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Actor is the authenticated caller of an operation. The zero value is an
// anonymous caller.
type Actor struct {
	AccountID string
	SessionID string
}

func (a Actor) Authenticated() bool {
	return a.AccountID != ""
}

// LikeState is the outcome of a like toggle.
type LikeState string

const (
	Liked   LikeState = "liked"
	Unliked LikeState = "unliked"
)

// ============================================
// Read Models
// ============================================

type ProfileView struct {
	Account        PublicAccount `json:"account"`
	Profile        Profile       `json:"profile"`
	Posts          []Post        `json:"posts"`
	IsFollowing    bool          `json:"is_following"`
	FollowersCount int64         `json:"followers_count"`
	FollowingCount int64         `json:"following_count"`
}

type PostDetail struct {
	Post       Post      `json:"post"`
	Comments   []Comment `json:"comments"`
	LikesCount int64     `json:"likes_count"`
	IsLiked    bool      `json:"is_liked"`
}

// ============================================
// Request/Response Models
// ============================================

type ErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Account   *Account  `json:"account"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetCompleteRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type EditProfileRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Age       *int    `json:"age"`
	Bio       *string `json:"bio"`
	Address   *string `json:"address"`
}

type PostRequest struct {
	Caption string `json:"caption"`
}

type CommentRequest struct {
	Body string `json:"body"`
}

type ToggleLikeResponse struct {
	State      LikeState `json:"state"`
	LikesCount int64     `json:"likes_count"`
}

type GetPostsResponse struct {
	Posts []Post `json:"posts"`
}

type GetAccountsResponse struct {
	Accounts []PublicAccount `json:"accounts"`
}

type FollowResponse struct {
	IsFollowing bool `json:"is_following"`
}
