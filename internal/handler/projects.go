package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/infinai/infinai/internal/content"
	"github.com/infinai/infinai/internal/model"
)

// ProjectListResponse is the body of GET /api/projects.
type ProjectListResponse struct {
	Filter   content.Filter       `json:"filter"`
	Projects []model.Project      `json:"projects"`
	Stats    content.ProjectStats `json:"stats"`
}

// ProjectsHandler serves the project catalogue as JSON.
type ProjectsHandler struct {
	site *content.Store
}

// NewProjectsHandler creates a new ProjectsHandler.
func NewProjectsHandler(site *content.Store) *ProjectsHandler {
	return &ProjectsHandler{site: site}
}

// List handles GET /api/projects?filter=.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := content.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown filter")
		return
	}

	projects := h.site.Projects(filter)
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{
		Filter:   filter,
		Projects: projects,
		Stats:    h.site.Stats(),
	})
}

// Get handles GET /api/projects/{id}.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.site.Project(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, content.ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
