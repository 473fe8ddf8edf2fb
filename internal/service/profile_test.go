package service

import (
	"context"
	"strings"
	"testing"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestViewProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.login(t, "alice")
	bob := f.login(t, "bob")

	_, err := f.svc.CreatePost(ctx, alice, "older")
	require.NoError(t, err)
	_, err = f.svc.CreatePost(ctx, alice, "newer")
	require.NoError(t, err)
	_, err = f.svc.CreatePost(ctx, bob, "not alice's")
	require.NoError(t, err)
	require.NoError(t, f.svc.Follow(ctx, bob, alice.AccountID))

	view, err := f.svc.ViewProfile(ctx, bob, alice.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Account.Username)
	assert.Equal(t, alice.AccountID, view.Profile.AccountID)
	require.Len(t, view.Posts, 2)
	assert.Equal(t, "newer", view.Posts[0].Caption)
	assert.True(t, view.IsFollowing)
	assert.Equal(t, int64(1), view.FollowersCount)
	assert.Equal(t, int64(0), view.FollowingCount)

	view, err = f.svc.ViewProfile(ctx, domain.Actor{}, alice.AccountID)
	require.NoError(t, err)
	assert.False(t, view.IsFollowing)

	_, err = f.svc.ViewProfile(ctx, bob, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.login(t, "alice")

	account, profile, err := f.svc.EditProfile(ctx, alice, alice.AccountID, domain.EditProfileRequest{
		FirstName: "Alice",
		LastName:  "Liddell",
		Email:     "alice@wonderland.example",
		Age:       ptr(30),
		Bio:       ptr("Curiouser and curiouser"),
		Address:   ptr("   "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", account.FirstName)
	assert.Equal(t, "alice@wonderland.example", account.Email)
	assert.Equal(t, 30, profile.Age)
	require.NotNil(t, profile.Bio)
	assert.Equal(t, "Curiouser and curiouser", *profile.Bio)
	assert.Nil(t, profile.Address, "blank address is stored as null")

	_, err = f.svc.Authenticate(ctx, "alice@wonderland.example", "password123")
	assert.NoError(t, err)
}

func TestEditProfile_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.login(t, "alice")
	bob := f.login(t, "bob")

	valid := domain.EditProfileRequest{Email: "alice@example.com", Age: ptr(20)}

	_, _, err := f.svc.EditProfile(ctx, bob, alice.AccountID, valid)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, _, err = f.svc.EditProfile(ctx, domain.Actor{}, alice.AccountID, valid)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	tests := []struct {
		name  string
		edit  func(*domain.EditProfileRequest)
		field string
		code  string
	}{
		{"missing age", func(r *domain.EditProfileRequest) { r.Age = nil }, "age", domain.CodeRequired},
		{"negative age", func(r *domain.EditProfileRequest) { r.Age = ptr(-1) }, "age", domain.CodeInvalid},
		{"age overflow", func(r *domain.EditProfileRequest) { r.Age = ptr(32768) }, "age", domain.CodeInvalid},
		{"missing email", func(r *domain.EditProfileRequest) { r.Email = "" }, "email", domain.CodeRequired},
		{"email taken", func(r *domain.EditProfileRequest) { r.Email = "bob@example.com" }, "email", domain.CodeEmailTaken},
		{"long address", func(r *domain.EditProfileRequest) { r.Address = ptr(strings.Repeat("a", 257)) }, "address", domain.CodeTooLong},
		{"long first name", func(r *domain.EditProfileRequest) { r.FirstName = strings.Repeat("a", 151) }, "first_name", domain.CodeTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.edit(&req)
			_, _, err := f.svc.EditProfile(ctx, alice, alice.AccountID, req)
			requireFieldError(t, err, tt.field, tt.code)
		})
	}

	profile, err := f.store.GetProfile(ctx, alice.AccountID)
	require.NoError(t, err)
	assert.Zero(t, profile.Age, "rejected edits change nothing")
}
