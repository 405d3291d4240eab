package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"task-manager/backend/logging"
	"task-manager/backend/models"
)

type TaskService struct {
	TasksCollection    *mongo.Collection
	ProjectsCollection *mongo.Collection
}

func NewTaskService(tasksCollection, projectsCollection *mongo.Collection) *TaskService {
	return &TaskService{
		TasksCollection:    tasksCollection,
		ProjectsCollection: projectsCollection,
	}
}

// GetTasksByProject lists all tasks of one project.
func (s *TaskService) GetTasksByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	return s.findTasks(ctx, bson.M{"project": projectID})
}

// GetTasksForUser lists tasks across every project the user created or is
// assigned to. The join runs as two queries: project ids first, then tasks
// whose project is in that set.
func (s *TaskService) GetTasksForUser(ctx context.Context, email string) ([]models.Task, error) {
	filter := bson.M{"$or": []bson.M{{"createdBy": email}, {"assignee": email}}}
	cursor, err := s.ProjectsCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user projects: %w", err)
	}
	defer cursor.Close(ctx)

	var projectIDs []primitive.ObjectID
	for cursor.Next(ctx) {
		var project models.Project
		if err := cursor.Decode(&project); err != nil {
			return nil, fmt.Errorf("failed to decode project: %w", err)
		}
		projectIDs = append(projectIDs, project.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	if len(projectIDs) == 0 {
		return []models.Task{}, nil
	}

	return s.findTasks(ctx, bson.M{"project": bson.M{"$in": projectIDs}})
}

func (s *TaskService) findTasks(ctx context.Context, filter bson.M) ([]models.Task, error) {
	cursor, err := s.TasksCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, fmt.Errorf("failed to decode task: %w", err)
		}
		task.EnsureDefaults()
		tasks = append(tasks, task)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.TasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	task.EnsureDefaults()
	return &task, nil
}

// CreateTask inserts the task and links it into the parent project's task
// list. The insert and the link are separate writes.
func (s *TaskService) CreateTask(ctx context.Context, projectID primitive.ObjectID, task *models.Task) (*models.Task, error) {
	task.ID = primitive.NewObjectID()
	task.Project = projectID
	task.Status = models.NormalizeStatus(task.Status)
	task.EnsureDefaults()

	result, err := s.TasksCollection.InsertOne(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	task.ID = result.InsertedID.(primitive.ObjectID)

	if err := s.attachToProject(ctx, projectID, task.ID); err != nil {
		logging.Logger.Warnf("Event ID: TASK_LINK_FAILED, Description: Task %s created but not linked to project %s: %v", task.ID.Hex(), projectID.Hex(), err)
		return nil, err
	}

	return task, nil
}

// UpdateTask overwrites only the supplied fields and returns the updated
// document.
func (s *TaskService) UpdateTask(ctx context.Context, taskID primitive.ObjectID, fields bson.M) (*models.Task, error) {
	if len(fields) == 0 {
		return s.GetTaskByID(ctx, taskID)
	}

	var task models.Task
	err := s.TasksCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": taskID},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	task.EnsureDefaults()
	return &task, nil
}

// DeleteTask removes the task and pulls its id out of the parent project's
// task list, keeping both sides of the link consistent.
func (s *TaskService) DeleteTask(ctx context.Context, taskID primitive.ObjectID) error {
	task, err := s.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}

	if _, err := s.TasksCollection.DeleteOne(ctx, bson.M{"_id": taskID}); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if err := s.detachFromProject(ctx, task.Project, taskID); err != nil {
		logging.Logger.Warnf("Event ID: TASK_UNLINK_FAILED, Description: Task %s deleted but still listed on project %s: %v", taskID.Hex(), task.Project.Hex(), err)
		return err
	}

	return nil
}

// ToggleFavorite adds userEmail to the task's favorites if absent, removes
// it if present. Load-then-save: concurrent toggles on the same task can
// drop one writer's change.
func (s *TaskService) ToggleFavorite(ctx context.Context, taskID primitive.ObjectID, userEmail string) (*models.Task, error) {
	task, err := s.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task.Favorites = toggleEmail(task.Favorites, userEmail)

	update := bson.M{"$set": bson.M{"favorites": task.Favorites}}
	if _, err := s.TasksCollection.UpdateOne(ctx, bson.M{"_id": taskID}, update); err != nil {
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	return task, nil
}

// AddComment appends a comment via load-then-save, mirroring ToggleFavorite.
func (s *TaskService) AddComment(ctx context.Context, taskID primitive.ObjectID, comment string) (*models.Task, error) {
	if comment == "" {
		return nil, ErrEmptyComment
	}

	task, err := s.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task.Comments = append(task.Comments, comment)

	update := bson.M{"$set": bson.M{"comments": task.Comments}}
	if _, err := s.TasksCollection.UpdateOne(ctx, bson.M{"_id": taskID}, update); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return task, nil
}

// AddCommentAtomic appends a comment with a single $push, safe under
// concurrent appends.
func (s *TaskService) AddCommentAtomic(ctx context.Context, taskID primitive.ObjectID, comment string) (*models.Task, error) {
	if comment == "" {
		return nil, ErrEmptyComment
	}

	var task models.Task
	err := s.TasksCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": taskID},
		bson.M{"$push": bson.M{"comments": comment}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	task.EnsureDefaults()
	return &task, nil
}

func (s *TaskService) GetComments(ctx context.Context, taskID primitive.ObjectID) ([]string, error) {
	task, err := s.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return task.Comments, nil
}

// attachToProject and detachFromProject are the only places the Project side
// of the Project/Task link is written; every mutation path goes through
// them.
func (s *TaskService) attachToProject(ctx context.Context, projectID, taskID primitive.ObjectID) error {
	update := bson.M{"$push": bson.M{"tasks": taskID}}
	_, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": projectID}, update)
	if err != nil {
		return fmt.Errorf("failed to link task to project: %w", err)
	}
	return nil
}

func (s *TaskService) detachFromProject(ctx context.Context, projectID, taskID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"tasks": taskID}}
	_, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": projectID}, update)
	if err != nil {
		return fmt.Errorf("failed to unlink task from project: %w", err)
	}
	return nil
}

func toggleEmail(list []string, email string) []string {
	for i, e := range list {
		if e == email {
			return append(list[:i], list[i+1:]...)
		}
	}
	return append(list, email)
}
