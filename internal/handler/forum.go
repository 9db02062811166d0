package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pawhaven/pawhaven/internal/auth"
	"github.com/pawhaven/pawhaven/internal/model"
	"github.com/pawhaven/pawhaven/internal/store"
	"github.com/pawhaven/pawhaven/internal/websocket"
)

type ForumHandler struct {
	forumStore *store.ForumStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewForumHandler(fs *store.ForumStore, hub *websocket.Hub, logger *slog.Logger) *ForumHandler {
	return &ForumHandler{forumStore: fs, hub: hub, logger: logger}
}

type postRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ListPosts handles GET /api/forum/posts
func (h *ForumHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.forumStore.ListPosts()
	if err != nil {
		h.logger.Error("list forum posts", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list posts"})
		return
	}
	if posts == nil {
		posts = []model.ForumPost{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// GetPost handles GET /api/forum/posts/{id}
func (h *ForumHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	post, err := h.forumStore.GetPost(id)
	if err != nil {
		h.logger.Error("get forum post", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get post"})
		return
	}
	if post == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// CreatePost handles POST /api/forum/posts
func (h *ForumHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Body) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and body are required"})
		return
	}

	post, err := h.forumStore.CreatePost(auth.UserID(r.Context()), req.Title, req.Body)
	if err != nil {
		h.logger.Error("create forum post", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create post"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("forum_post", "created", post.ID, nil))
	writeJSON(w, http.StatusCreated, post)
}

// UpdatePost handles PUT /api/forum/posts/{id}. Only the author may edit.
func (h *ForumHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	post, err := h.forumStore.GetPost(id)
	if err != nil {
		h.logger.Error("get forum post", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get post"})
		return
	}
	if post == nil || post.UserID != auth.UserID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Body) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and body are required"})
		return
	}

	updated, err := h.forumStore.UpdatePost(id, req.Title, req.Body)
	if err != nil {
		h.logger.Error("update forum post", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update post"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("forum_post", "updated", id, nil))
	writeJSON(w, http.StatusOK, updated)
}

// DeletePost handles DELETE /api/forum/posts/{id}. The author or staff
// may delete, which also removes the post's comments.
func (h *ForumHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	post, err := h.forumStore.GetPost(id)
	if err != nil {
		h.logger.Error("get forum post", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get post"})
		return
	}
	if post == nil || (post.UserID != auth.UserID(r.Context()) && !auth.IsStaff(r.Context())) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
		return
	}

	if err := h.forumStore.DeletePost(id); err != nil {
		h.logger.Error("delete forum post", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete post"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("forum_post", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type commentRequest struct {
	Body string `json:"body"`
}

// ListComments handles GET /api/forum/posts/{id}/comments
func (h *ForumHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	comments, err := h.forumStore.ListComments(id)
	if err != nil {
		h.logger.Error("list forum comments", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list comments"})
		return
	}
	if comments == nil {
		comments = []model.ForumComment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// CreateComment handles POST /api/forum/posts/{id}/comments
func (h *ForumHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	post, err := h.forumStore.GetPost(id)
	if err != nil {
		h.logger.Error("get forum post", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get post"})
		return
	}
	if post == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body is required"})
		return
	}

	comment, err := h.forumStore.CreateComment(id, auth.UserID(r.Context()), req.Body)
	if err != nil {
		h.logger.Error("create forum comment", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create comment"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("forum_comment", "created", comment.ID, map[string]any{
		"post_id": id,
	}))
	writeJSON(w, http.StatusCreated, comment)
}

// DeleteComment handles DELETE /api/forum/comments/{id}. The author or
// staff may delete.
func (h *ForumHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	comment, err := h.forumStore.GetComment(id)
	if err != nil {
		h.logger.Error("get forum comment", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get comment"})
		return
	}
	if comment == nil || (comment.UserID != auth.UserID(r.Context()) && !auth.IsStaff(r.Context())) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "comment not found"})
		return
	}

	if err := h.forumStore.DeleteComment(id); err != nil {
		h.logger.Error("delete forum comment", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete comment"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("forum_comment", "deleted", id, map[string]any{
		"post_id": comment.PostID,
	}))
	w.WriteHeader(http.StatusNoContent)
}
