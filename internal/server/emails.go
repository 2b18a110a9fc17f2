package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
)

func (s *Server) handleClassifyEmails(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !s.decode(w, r, &req) {
		return
	}

	results, err := s.inbox.Classify(r.Context(), req.Emails)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ClassifyResponse{Results: results})
}

func (s *Server) handleIngestEmail(w http.ResponseWriter, r *http.Request) {
	var email models.Email
	if !s.decode(w, r, &email) {
		return
	}

	stored, result, err := s.inbox.Ingest(r.Context(), email)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, IngestResponse{Email: stored, Result: result})
}

func (s *Server) handleReclassifyEmails(w http.ResponseWriter, r *http.Request) {
	n, err := s.inbox.Reclassify(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ReclassifyResponse{Processed: n})
}

func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	emails, err := s.store.ListEmails(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filtered := emails[:0]
		for _, e := range emails {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		emails = filtered
	}
	s.writeJSON(w, http.StatusOK, emails)
}

func (s *Server) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	email, err := s.store.GetEmail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, email)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.ListCategories(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleSaveCategory(w http.ResponseWriter, r *http.Request) {
	var rule models.CategoryRule
	if !s.decode(w, r, &rule) {
		return
	}
	rule.Name = strings.TrimSpace(rule.Name)
	if rule.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := s.store.SaveCategory(r.Context(), rule); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCategory(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	typ := models.ResourceType(r.URL.Query().Get("type"))
	switch typ {
	case "", models.ResourceQuotation, models.ResourceService, models.ResourceClient:
	default:
		s.writeError(w, http.StatusBadRequest, "unknown resource type")
		return
	}

	resources, err := s.store.ListResources(r.Context(), typ)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resources)
}
