package server

import (
	"net/http"
	"time"

	"content-control/internal/model"
)

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID uint   `json:"project_id"`
		Name      string `json:"name"`
		Text      string `json:"text"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Text == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and text are required"})
		return
	}
	doc := model.Document{ProjectID: req.ProjectID, Name: req.Name, Text: req.Text}
	if err := s.analysisDB.CreateDocument(r.Context(), &doc); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) createIndicator(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID   uint   `json:"project_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Unit        string `json:"unit"`
		Values      []struct {
			Period string  `json:"period"`
			Value  float64 `json:"value"`
		} `json:"values"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	ind := model.Indicator{ProjectID: req.ProjectID, Name: req.Name, Description: req.Description, Unit: req.Unit}
	for _, v := range req.Values {
		ind.Values = append(ind.Values, model.IndicatorValue{Period: v.Period, Value: v.Value})
	}
	if err := s.analysisDB.CreateIndicator(r.Context(), &ind); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, ind)
}

func (s *Server) listPrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := s.analysisDB.ListPrompts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, prompts)
}

func (s *Server) createPrompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Text == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and text are required"})
		return
	}
	prompt := model.Prompt{Name: req.Name, Text: req.Text}
	if err := s.analysisDB.CreatePrompt(r.Context(), &prompt); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, prompt)
}

func (s *Server) listAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := s.analyses.History(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analyses)
}

func (s *Server) analyzeDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID uint `json:"document_id"`
		PromptID   uint `json:"prompt_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	analysis, err := s.analyses.AnalyzeDocument(r.Context(), req.DocumentID, req.PromptID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, analysis)
}

func (s *Server) analyzeIndicator(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IndicatorID uint `json:"indicator_id"`
		PromptID    uint `json:"prompt_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	analysis, err := s.analyses.AnalyzeIndicator(r.Context(), req.IndicatorID, req.PromptID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, analysis)
}

func (s *Server) sendDigest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OccurrenceIDs []uint `json:"occurrence_ids"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	summary, err := s.notifier.SendProjectDigests(r.Context(), req.OccurrenceIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) kpiSnapshot(w http.ResponseWriter, r *http.Request) {
	report, err := s.kpis.Snapshot(r.Context(), time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}
