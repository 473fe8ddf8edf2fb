package handler

import (
	"net/http"

	"github.com/Tetsu-is/social-graph/internal/auth"
	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPosts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.GetPostsResponse{Posts: posts})
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req domain.PostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	post, err := h.svc.CreatePost(r.Context(), auth.ActorFromContext(r.Context()), req.Caption)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) postDetail(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	detail, err := h.svc.PostDetail(r.Context(), actor, chi.URLParam(r, "postID"), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	var req domain.PostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	actor := auth.ActorFromContext(r.Context())
	post, err := h.svc.UpdatePost(r.Context(), actor, chi.URLParam(r, "postID"), req.Caption)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePost(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "postID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	var req domain.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	actor := auth.ActorFromContext(r.Context())
	comment, err := h.svc.AddComment(r.Context(), actor, chi.URLParam(r, "postID"), req.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) addReply(w http.ResponseWriter, r *http.Request) {
	var req domain.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	actor := auth.ActorFromContext(r.Context())
	reply, err := h.svc.AddReply(r.Context(), actor, chi.URLParam(r, "postID"), chi.URLParam(r, "commentID"), req.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.ToggleLike(r.Context(), auth.ActorFromContext(r.Context()), chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
