package handler

import (
	"net/http"

	"github.com/Tetsu-is/social-graph/internal/auth"
	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/go-chi/chi/v5"
)

type editProfileResponse struct {
	Account *domain.Account `json:"account"`
	Profile *domain.Profile `json:"profile"`
}

func (h *Handler) viewProfile(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ViewProfile(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) editProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.EditProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	actor := auth.ActorFromContext(r.Context())
	account, profile, err := h.svc.EditProfile(r.Context(), actor, chi.URLParam(r, "accountID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, editProfileResponse{Account: account, Profile: profile})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), auth.ActorFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Follow(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "accountID")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.FollowResponse{IsFollowing: true})
}

func (h *Handler) unfollow(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unfollow(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "accountID")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.FollowResponse{IsFollowing: false})
}

func (h *Handler) followers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.Followers(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.GetAccountsResponse{Accounts: domain.PublicAccounts(accounts)})
}

func (h *Handler) following(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.Following(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.GetAccountsResponse{Accounts: domain.PublicAccounts(accounts)})
}
