package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"content-control/internal/apperr"
	"content-control/internal/repository"
	"content-control/internal/service"
)

// Server exposes the service layer as a JSON API under /api.
type Server struct {
	router     *mux.Router
	recurrence *service.RecurrenceService
	imports    *service.ImportService
	templates  *service.TemplateService
	analyses   *service.AnalysisService
	notifier   *service.NotifierService
	kpis       *service.KPIService
	catalogs   *repository.CatalogRepository
	analysisDB *repository.AnalysisRepository
	log        *zap.Logger
}

func New(
	recurrence *service.RecurrenceService,
	imports *service.ImportService,
	templates *service.TemplateService,
	analyses *service.AnalysisService,
	notifier *service.NotifierService,
	kpis *service.KPIService,
	catalogs *repository.CatalogRepository,
	analysisDB *repository.AnalysisRepository,
	log *zap.Logger,
) *Server {
	s := &Server{
		recurrence: recurrence,
		imports:    imports,
		templates:  templates,
		analyses:   analyses,
		notifier:   notifier,
		kpis:       kpis,
		catalogs:   catalogs,
		analysisDB: analysisDB,
		log:        log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.logRequests)

	api.HandleFunc("/projects", s.listProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects", s.createProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/members", s.addProjectMember).Methods(http.MethodPost)
	api.HandleFunc("/categories", s.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.createCategory).Methods(http.MethodPost)
	api.HandleFunc("/lists", s.listTaskLists).Methods(http.MethodGet)
	api.HandleFunc("/lists", s.createTaskList).Methods(http.MethodPost)
	api.HandleFunc("/lists/{id}/members", s.addListMember).Methods(http.MethodPost)
	api.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", s.createUser).Methods(http.MethodPost)

	api.HandleFunc("/definitions", s.listDefinitions).Methods(http.MethodGet)
	api.HandleFunc("/definitions", s.createDefinition).Methods(http.MethodPost)
	api.HandleFunc("/definitions/{id}/occurrences", s.generateOccurrences).Methods(http.MethodPost)
	api.HandleFunc("/occurrences", s.listOccurrences).Methods(http.MethodGet)
	api.HandleFunc("/occurrences/{id}", s.updateOccurrence).Methods(http.MethodPatch)

	api.HandleFunc("/import/definitions", s.importDefinitions).Methods(http.MethodPost)
	api.HandleFunc("/import/tasks", s.importTasks).Methods(http.MethodPost)
	api.HandleFunc("/import/routines", s.importRoutines).Methods(http.MethodPost)
	api.HandleFunc("/templates/definitions", s.definitionsTemplate).Methods(http.MethodGet)
	api.HandleFunc("/templates/tasks", s.tasksTemplate).Methods(http.MethodGet)
	api.HandleFunc("/templates/routines", s.routinesTemplate).Methods(http.MethodGet)

	api.HandleFunc("/documents", s.createDocument).Methods(http.MethodPost)
	api.HandleFunc("/indicators", s.createIndicator).Methods(http.MethodPost)
	api.HandleFunc("/prompts", s.listPrompts).Methods(http.MethodGet)
	api.HandleFunc("/prompts", s.createPrompt).Methods(http.MethodPost)
	api.HandleFunc("/analyses", s.listAnalyses).Methods(http.MethodGet)
	api.HandleFunc("/analyses/documents", s.analyzeDocument).Methods(http.MethodPost)
	api.HandleFunc("/analyses/indicators", s.analyzeIndicator).Methods(http.MethodPost)

	api.HandleFunc("/notifications/digest", s.sendDigest).Methods(http.MethodPost)
	api.HandleFunc("/kpis", s.kpiSnapshot).Methods(http.MethodGet)

	s.router = r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Validation errors
// are itemized; everything else is a single message.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if verrs, ok := apperr.AsValidation(err); ok {
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verrs})
		return
	}
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalidArgument):
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case apperr.IsExternal(err):
		s.writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}
