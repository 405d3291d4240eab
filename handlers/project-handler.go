package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"task-manager/backend/logging"
	"task-manager/backend/models"
	"task-manager/backend/services"
)

// maxProjectFiles caps attachments per project creation request.
const maxProjectFiles = 5

type ProjectStore interface {
	GetProjectsByCreator(ctx context.Context, email string) ([]models.Project, error)
	GetProjectsByUser(ctx context.Context, userID string) ([]models.Project, error)
	GetProjectByID(ctx context.Context, projectID primitive.ObjectID) (*models.Project, error)
	CreateProject(ctx context.Context, project *models.Project) (*models.Project, error)
	UpdateProject(ctx context.Context, projectID primitive.ObjectID, fields bson.M) (*models.Project, error)
	DeleteProject(ctx context.Context, projectID primitive.ObjectID) error
}

type FileSaver interface {
	SaveUploads(files []*multipart.FileHeader) ([]string, error)
}

type ProjectHandler struct {
	Service ProjectStore
	Files   FileSaver
}

func NewProjectHandler(service ProjectStore, files FileSaver) *ProjectHandler {
	return &ProjectHandler{Service: service, Files: files}
}

// ListProjects returns the projects created by the given email.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	projects, err := h.Service.GetProjectsByCreator(r.Context(), email)
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_LIST_FAILED, Description: Error fetching projects for %s: %v", email, err)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

// ListProjectsByUser is the legacy twin of ListProjects. It filters on the
// user field, which project creation never populates, so callers get an
// empty list; the route is kept for old clients.
func (h *ProjectHandler) ListProjectsByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "User is required")
		return
	}

	projects, err := h.Service.GetProjectsByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching projects")
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	project, err := h.Service.GetProjectByID(r.Context(), projectID)
	if errors.Is(err, services.ErrProjectNotFound) {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching project details")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// CreateProject accepts a multipart form with project fields and up to five
// attachments under the files key. Attachments are stored before the
// project document is written; only the stored filenames go into the
// document.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	createdBy := r.FormValue("createdBy")
	if createdBy == "" {
		respondError(w, http.StatusBadRequest, "CreatedBy (email) is required")
		return
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["files"]
	}
	if len(files) > maxProjectFiles {
		respondError(w, http.StatusBadRequest, "A maximum of 5 files can be uploaded")
		return
	}

	stored, err := h.Files.SaveUploads(files)
	if err != nil {
		logging.Logger.Errorf("Event ID: FILE_SAVE_FAILED, Description: Error storing attachments: %v", err)
		respondError(w, http.StatusInternalServerError, "Error creating project")
		return
	}

	project := &models.Project{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Priority:    r.FormValue("priority"),
		Deadline:    parseDate(r.FormValue("deadline")),
		Assignee:    r.FormValue("assignee"),
		CreatedBy:   createdBy,
		Files:       stored,
	}

	created, err := h.Service.CreateProject(r.Context(), project)
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_CREATE_FAILED, Description: Error creating project: %v", err)
		respondError(w, http.StatusInternalServerError, "Error creating project")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Project created successfully",
		"project": created,
	})
}

// ProjectUpdateRequest carries the optional fields of a partial update.
// Only non-nil fields reach the store.
type ProjectUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	Assignee    *string    `json:"assignee"`
	CreatedBy   *string    `json:"createdBy"`
}

func buildProjectUpdate(req ProjectUpdateRequest) bson.M {
	fields := bson.M{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.Deadline != nil {
		fields["deadline"] = *req.Deadline
	}
	if req.Assignee != nil {
		fields["assignee"] = *req.Assignee
	}
	if req.CreatedBy != nil {
		fields["createdBy"] = *req.CreatedBy
	}
	return fields
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var req ProjectUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	project, err := h.Service.UpdateProject(r.Context(), projectID, buildProjectUpdate(req))
	if errors.Is(err, services.ErrProjectNotFound) {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error updating project")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Project updated successfully",
		"project": project,
	})
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	err = h.Service.DeleteProject(r.Context(), projectID)
	if errors.Is(err, services.ErrProjectNotFound) {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_DELETE_FAILED, Description: Error deleting project %s: %v", projectID.Hex(), err)
		respondError(w, http.StatusInternalServerError, "Error deleting project")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Project and associated tasks deleted successfully"})
}

// parseDate accepts RFC 3339 timestamps or bare dates. Anything else leaves
// the field unset, matching the loose date handling of the old backend.
func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return time.Time{}
}
