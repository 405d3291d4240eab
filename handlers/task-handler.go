package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"task-manager/backend/logging"
	"task-manager/backend/models"
	"task-manager/backend/services"
)

type TaskStore interface {
	GetTasksByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error)
	GetTasksForUser(ctx context.Context, email string) ([]models.Task, error)
	CreateTask(ctx context.Context, projectID primitive.ObjectID, task *models.Task) (*models.Task, error)
	UpdateTask(ctx context.Context, taskID primitive.ObjectID, fields bson.M) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID primitive.ObjectID) error
	ToggleFavorite(ctx context.Context, taskID primitive.ObjectID, userEmail string) (*models.Task, error)
	AddComment(ctx context.Context, taskID primitive.ObjectID, comment string) (*models.Task, error)
	AddCommentAtomic(ctx context.Context, taskID primitive.ObjectID, comment string) (*models.Task, error)
	GetComments(ctx context.Context, taskID primitive.ObjectID) ([]string, error)
}

type TaskHandler struct {
	Service TaskStore
}

func NewTaskHandler(service TaskStore) *TaskHandler {
	return &TaskHandler{Service: service}
}

func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["projectId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	tasks, err := h.Service.GetTasksByProject(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching tasks")
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

// ListForUser returns tasks from every project the user created or is
// assigned to.
func (h *TaskHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	tasks, err := h.Service.GetTasksForUser(r.Context(), email)
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_LIST_FAILED, Description: Error fetching tasks for %s: %v", email, err)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

type CreateTaskRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Assignee    string            `json:"assignee"`
	Status      models.TaskStatus `json:"status"`
	DueDate     time.Time         `json:"dueDate"`
}

// Create inserts a task under the project from the path. An unknown status
// value is stored as "To Do".
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["projectId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		Status:      models.NormalizeStatus(req.Status),
		DueDate:     req.DueDate,
	}

	created, err := h.Service.CreateTask(r.Context(), projectID, task)
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_CREATE_FAILED, Description: Error creating task: %v", err)
		respondError(w, http.StatusInternalServerError, "Error creating task")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// TaskUpdateRequest carries the optional fields of a partial update. It
// serves both the status-only and full-field update callers.
type TaskUpdateRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Assignee    *string            `json:"assignee"`
	Status      *models.TaskStatus `json:"status"`
	DueDate     *time.Time         `json:"dueDate"`
}

func buildTaskUpdate(req TaskUpdateRequest) bson.M {
	fields := bson.M{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Assignee != nil {
		fields["assignee"] = *req.Assignee
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.DueDate != nil {
		fields["dueDate"] = *req.DueDate
	}
	return fields
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["taskId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	var req TaskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	task, err := h.Service.UpdateTask(r.Context(), taskID, buildTaskUpdate(req))
	if errors.Is(err, services.ErrTaskNotFound) {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error updating task")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Task updated successfully",
		"task":    task,
	})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["taskId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	err = h.Service.DeleteTask(r.Context(), taskID)
	if errors.Is(err, services.ErrTaskNotFound) {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error deleting task")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// ToggleFavorite flips the caller's membership in the task's favorites
// list. Toggling twice with the same email restores the original list.
func (h *TaskHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["taskId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	var req struct {
		UserEmail string `json:"userEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	task, err := h.Service.ToggleFavorite(r.Context(), taskID, req.UserEmail)
	if errors.Is(err, services.ErrTaskNotFound) {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		logging.Logger.Errorf("Event ID: FAVORITE_TOGGLE_FAILED, Description: Error toggling favorite on task %s: %v", taskID.Hex(), err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Favorite toggled",
		"task":    task,
	})
}

func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	h.addComment(w, r, h.Service.AddComment)
}

// AddCommentAtomic is the $push variant of AddComment; both routes survive
// because clients call both.
func (h *TaskHandler) AddCommentAtomic(w http.ResponseWriter, r *http.Request) {
	h.addComment(w, r, h.Service.AddCommentAtomic)
}

func (h *TaskHandler) addComment(w http.ResponseWriter, r *http.Request, add func(context.Context, primitive.ObjectID, string) (*models.Task, error)) {
	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["taskId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	var req struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	task, err := add(r.Context(), taskID, req.Comment)
	if errors.Is(err, services.ErrEmptyComment) {
		respondError(w, http.StatusBadRequest, "Comment cannot be empty")
		return
	}
	if errors.Is(err, services.ErrTaskNotFound) {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Comment added successfully",
		"task":    task,
	})
}

func (h *TaskHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	taskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["taskId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	comments, err := h.Service.GetComments(r.Context(), taskID)
	if errors.Is(err, services.ErrTaskNotFound) {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}
