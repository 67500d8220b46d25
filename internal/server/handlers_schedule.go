package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"content-control/internal/repository"
	"content-control/internal/service"
)

func pathID(r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	return uint(id), err == nil && id > 0
}

type definitionRequest struct {
	ProjectID          uint   `json:"project_id"`
	CategoryID         uint   `json:"category_id"`
	Description        string `json:"description"`
	InitialDue         string `json:"initial_due"` // YYYY-MM-DD
	RecurrenceUnit     string `json:"recurrence_unit"`
	RecurrenceInterval int    `json:"recurrence_interval"`
	Repetitions        int    `json:"repetitions"`
	Obligatory         bool   `json:"obligatory"`
}

func (s *Server) createDefinition(w http.ResponseWriter, r *http.Request) {
	var req definitionRequest
	if !s.decode(w, r, &req) {
		return
	}
	due, err := time.Parse("2006-01-02", req.InitialDue)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "initial_due must be YYYY-MM-DD"})
		return
	}
	def, err := s.recurrence.CreateDefinition(r.Context(), service.DefinitionInput{
		ProjectID:          req.ProjectID,
		CategoryID:         req.CategoryID,
		Description:        req.Description,
		InitialDue:         due,
		RecurrenceUnit:     req.RecurrenceUnit,
		RecurrenceInterval: req.RecurrenceInterval,
		Repetitions:        req.Repetitions,
		Obligatory:         req.Obligatory,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, def)
}

func (s *Server) listDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := s.recurrence.ListDefinitions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, defs)
}

func (s *Server) generateOccurrences(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid definition id"})
		return
	}
	var req struct {
		Count int `json:"count"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	occs, err := s.recurrence.GenerateOccurrences(r.Context(), id, req.Count)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"added":       len(occs),
		"occurrences": occs,
	})
}

func (s *Server) listOccurrences(w http.ResponseWriter, r *http.Request) {
	var filter repository.OccurrenceFilter
	q := r.URL.Query()
	if raw := q.Get("project_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.ProjectID = uint(id)
		}
	}
	if raw := q.Get("category_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.CategoryID = uint(id)
		}
	}
	if raw := q.Get("archived"); raw != "" {
		archived := raw == "true" || raw == "1"
		filter.Archived = &archived
	}
	if raw := q.Get("read"); raw != "" {
		read := raw == "true" || raw == "1"
		filter.Read = &read
	}
	occs, err := s.recurrence.ListOccurrences(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, occs)
}

func (s *Server) updateOccurrence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid occurrence id"})
		return
	}
	var req struct {
		Read      *bool `json:"read"`
		Important *bool `json:"important"`
		Archived  *bool `json:"archived"`
		Snoozed   *bool `json:"snoozed"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	flags := make(map[string]any)
	if req.Read != nil {
		flags["read"] = *req.Read
	}
	if req.Important != nil {
		flags["important"] = *req.Important
	}
	if req.Archived != nil {
		flags["archived"] = *req.Archived
	}
	if req.Snoozed != nil {
		flags["snoozed"] = *req.Snoozed
	}
	if err := s.recurrence.UpdateOccurrenceFlags(r.Context(), id, flags); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}
