package server

import (
	"net/http"

	"content-control/internal/model"
)

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.catalogs.ListProjects(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, projects)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	project := model.Project{Name: req.Name}
	if err := s.catalogs.CreateProject(r.Context(), &project); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, project)
}

func (s *Server) addProjectMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project id"})
		return
	}
	var req struct {
		UserID uint `json:"user_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	m := model.ProjectMembership{ProjectID: id, UserID: req.UserID}
	if err := s.catalogs.AddProjectMembership(r.Context(), &m); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, m)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.catalogs.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, categories)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	category := model.Category{Name: req.Name}
	if err := s.catalogs.CreateCategory(r.Context(), &category); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, category)
}

func (s *Server) listTaskLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.catalogs.ListTaskLists(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lists)
}

func (s *Server) createTaskList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID uint   `json:"project_id"`
		Name      string `json:"name"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.ProjectID == 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and project_id are required"})
		return
	}
	list := model.TaskList{ProjectID: req.ProjectID, Name: req.Name}
	if err := s.catalogs.CreateTaskList(r.Context(), &list); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, list)
}

func (s *Server) addListMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid list id"})
		return
	}
	var req struct {
		UserID uint `json:"user_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	m := model.ListMembership{TaskListID: id, UserID: req.UserID}
	if err := s.catalogs.AddMembership(r.Context(), &m); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, m)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.catalogs.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and email are required"})
		return
	}
	user := model.User{Name: req.Name, Email: req.Email}
	if err := s.catalogs.CreateUser(r.Context(), &user); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, user)
}
