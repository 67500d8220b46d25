package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// 20 MB upload cap; spreadsheets beyond that are rejected outright.
const maxUploadBytes = 20 << 20

func (s *Server) importDefinitions(w http.ResponseWriter, r *http.Request) {
	s.runImport(w, r, s.imports.ImportDefinitions)
}

func (s *Server) importTasks(w http.ResponseWriter, r *http.Request) {
	s.runImport(w, r, s.imports.ImportTasks)
}

func (s *Server) importRoutines(w http.ResponseWriter, r *http.Request) {
	s.runImport(w, r, s.imports.ImportRoutines)
}

func (s *Server) runImport(w http.ResponseWriter, r *http.Request, importFn func(context.Context, io.Reader) (int, error)) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form: " + err.Error()})
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "form field \"file\" is required"})
		return
	}
	defer file.Close()

	inserted, err := importFn(r.Context(), file)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]int{"inserted": inserted})
}

func (s *Server) definitionsTemplate(w http.ResponseWriter, r *http.Request) {
	s.serveTemplate(w, r, "template_controle_conteudo", s.templates.DefinitionsTemplate)
}

func (s *Server) tasksTemplate(w http.ResponseWriter, r *http.Request) {
	s.serveTemplate(w, r, "template_tarefas", s.templates.TasksTemplate)
}

func (s *Server) routinesTemplate(w http.ResponseWriter, r *http.Request) {
	s.serveTemplate(w, r, "template_rotinas", s.templates.RoutinesTemplate)
}

func (s *Server) serveTemplate(w http.ResponseWriter, r *http.Request, name string, buildFn func(context.Context) ([]byte, error)) {
	data, err := buildFn(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Warn("write template response", zap.Error(err))
	}
}
