package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/iamgilwell/hemat/internal/ai"
	"github.com/iamgilwell/hemat/internal/content"
	"github.com/iamgilwell/hemat/internal/notification"
	"github.com/iamgilwell/hemat/internal/publisher"
)

// handleListPublished handles GET /api/articles
func (s *Server) handleListPublished(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		s.writeError(w, "INVALID_QUERY", "offset must be a non-negative integer", http.StatusBadRequest)
		return
	}
	limit, err := queryInt(q.Get("limit"), s.opts.PageSize)
	if err != nil || limit <= 0 {
		s.writeError(w, "INVALID_QUERY", "limit must be a positive integer", http.StatusBadRequest)
		return
	}
	if limit > s.opts.MaxPageSize {
		limit = s.opts.MaxPageSize
	}

	page, err := s.deps.Articles.FetchPage(r.Context(), offset, content.Filter{
		Search:        q.Get("search"),
		Category:      q.Get("category"),
		PublishedOnly: true,
		Limit:         limit,
	})
	if err != nil {
		s.internalError(w, "fetching articles", err)
		return
	}
	s.writeJSON(w, page, http.StatusOK)
}

// handleGetPublished handles GET /api/articles/{id}
func (s *Server) handleGetPublished(w http.ResponseWriter, r *http.Request) {
	a, err := s.deps.Articles.GetPublished(r.Context(), r.PathValue("id"))
	if err != nil {
		s.storeError(w, "loading article", err)
		return
	}
	s.writeJSON(w, a, http.StatusOK)
}

// handleAdminList handles GET /api/admin/articles
func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	articles, err := s.deps.Articles.List(r.Context(), content.ParseStatus(r.URL.Query().Get("status")))
	if err != nil {
		s.internalError(w, "listing articles", err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"items": articles}, http.StatusOK)
}

// handleAdminGet handles GET /api/admin/articles/{id}
func (s *Server) handleAdminGet(w http.ResponseWriter, r *http.Request) {
	a, err := s.deps.Articles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.storeError(w, "loading article", err)
		return
	}
	s.writeJSON(w, a, http.StatusOK)
}

type articleRequest struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Summary      string   `json:"summary"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	ThumbnailURL string   `json:"thumbnail_url"`
	IsPublished  bool     `json:"is_published"`
}

func (req articleRequest) apply(a *content.Article) error {
	category, err := content.ParseCategory(req.Category)
	if err != nil {
		return err
	}
	a.Title = strings.TrimSpace(req.Title)
	a.Content = req.Content
	a.Summary = strings.TrimSpace(req.Summary)
	a.Category = category
	a.Tags = content.ParseTags(strings.Join(req.Tags, ","))
	a.ThumbnailURL = strings.TrimSpace(req.ThumbnailURL)
	a.IsPublished = req.IsPublished
	return nil
}

// handleCreate handles POST /api/admin/articles
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if !s.decode(w, r, &req) {
		return
	}

	a := &content.Article{}
	if err := req.apply(a); err != nil {
		s.storeError(w, "creating article", err)
		return
	}
	if err := s.deps.Articles.Create(r.Context(), a); err != nil {
		s.storeError(w, "creating article", err)
		return
	}

	s.record(r, notification.EventArticleCreated, publisher.ArticleCreated, a)
	if a.IsPublished {
		s.record(r, notification.EventArticlePublished, publisher.ArticlePublished, a)
	}
	s.writeJSON(w, a, http.StatusCreated)
}

// handleUpdate handles PUT /api/admin/articles/{id}
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if !s.decode(w, r, &req) {
		return
	}

	a, err := s.deps.Articles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.storeError(w, "loading article", err)
		return
	}
	wasPublished := a.IsPublished

	if err := req.apply(a); err != nil {
		s.storeError(w, "updating article", err)
		return
	}
	if err := s.deps.Articles.Update(r.Context(), a); err != nil {
		s.storeError(w, "updating article", err)
		return
	}

	s.record(r, notification.EventArticleUpdated, publisher.ArticleUpdated, a)
	switch {
	case a.IsPublished && !wasPublished:
		s.record(r, notification.EventArticlePublished, publisher.ArticlePublished, a)
	case !a.IsPublished && wasPublished:
		s.record(r, notification.EventArticleUnpublished, publisher.ArticleUnpublished, a)
	}
	s.writeJSON(w, a, http.StatusOK)
}

// handleDelete handles DELETE /api/admin/articles/{id}
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a, err := s.deps.Articles.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, "loading article", err)
		return
	}
	if err := s.deps.Articles.Delete(r.Context(), id); err != nil {
		s.storeError(w, "deleting article", err)
		return
	}

	s.record(r, notification.EventArticleDeleted, publisher.ArticleDeleted, a)
	w.WriteHeader(http.StatusNoContent)
}

// handlePublish handles POST /api/admin/articles/{id}/publish and /unpublish
func (s *Server) handlePublish(published bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.deps.Articles.SetPublished(r.Context(), id, published); err != nil {
			s.storeError(w, "publishing article", err)
			return
		}
		a, err := s.deps.Articles.Get(r.Context(), id)
		if err != nil {
			s.storeError(w, "loading article", err)
			return
		}

		if published {
			s.record(r, notification.EventArticlePublished, publisher.ArticlePublished, a)
		} else {
			s.record(r, notification.EventArticleUnpublished, publisher.ArticleUnpublished, a)
		}
		s.writeJSON(w, a, http.StatusOK)
	}
}

// handleGenerate handles POST /api/generate-content
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Advisor == nil {
		s.writeError(w, "AI_UNAVAILABLE", "content generation is not configured", http.StatusServiceUnavailable)
		return
	}

	var req ai.DraftRequest
	if !s.decode(w, r, &req) {
		return
	}

	draft, err := s.deps.Advisor.DraftArticle(r.Context(), req)
	if errors.Is(err, ai.ErrTopicRequired) {
		s.writeError(w, "VALIDATION_ERROR", "Topic is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Error("content generation failed", zap.Error(err))
		s.writeError(w, "GENERATION_ERROR", "Failed to generate content", http.StatusInternalServerError)
		return
	}

	if s.deps.Auditor != nil {
		if err := s.deps.Auditor.LogDraft(actor(r), req.Topic, draft.Title); err != nil {
			s.log.Warn("audit write failed", zap.Error(err))
		}
	}
	s.writeJSON(w, draft, http.StatusOK)
}

// record writes an admin action to the audit trail and the event stream.
func (s *Server) record(r *http.Request, auditEvent, eventType string, a *content.Article) {
	if s.deps.Auditor != nil {
		if err := s.deps.Auditor.LogArticle(auditEvent, actor(r), a.ID, a.Title); err != nil {
			s.log.Warn("audit write failed", zap.Error(err))
		}
	}
	s.publish(publisher.Event{Type: eventType, ArticleID: a.ID, Title: a.Title})
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		s.writeError(w, "NOT_FOUND", err.Error(), http.StatusNotFound)
	case errors.Is(err, content.ErrTitleRequired),
		errors.Is(err, content.ErrContentRequired),
		errors.Is(err, content.ErrInvalidCategory):
		s.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
	default:
		s.internalError(w, op, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op, zap.Error(err))
	s.writeError(w, "INTERNAL_ERROR", op+" failed", http.StatusInternalServerError)
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
