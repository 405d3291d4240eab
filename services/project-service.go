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

type ProjectService struct {
	ProjectsCollection *mongo.Collection
	TasksCollection    *mongo.Collection
}

func NewProjectService(projectsCollection, tasksCollection *mongo.Collection) *ProjectService {
	return &ProjectService{
		ProjectsCollection: projectsCollection,
		TasksCollection:    tasksCollection,
	}
}

// GetProjectsByCreator lists projects whose createdBy matches email.
func (s *ProjectService) GetProjectsByCreator(ctx context.Context, email string) ([]models.Project, error) {
	return s.findProjects(ctx, bson.M{"createdBy": email})
}

// GetProjectsByUser lists projects whose legacy user field matches userID.
// Project creation never writes that field, so this typically returns an
// empty list; the route survives for old clients.
func (s *ProjectService) GetProjectsByUser(ctx context.Context, userID string) ([]models.Project, error) {
	return s.findProjects(ctx, bson.M{"user": userID})
}

func (s *ProjectService) findProjects(ctx context.Context, filter bson.M) ([]models.Project, error) {
	cursor, err := s.ProjectsCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve projects: %w", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	for cursor.Next(ctx) {
		var project models.Project
		if err := cursor.Decode(&project); err != nil {
			return nil, fmt.Errorf("failed to decode project: %w", err)
		}
		project.EnsureDefaults()
		projects = append(projects, project)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return projects, nil
}

func (s *ProjectService) GetProjectByID(ctx context.Context, projectID primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve project: %w", err)
	}
	project.EnsureDefaults()
	return &project, nil
}

// CreateProject inserts a new project document.
func (s *ProjectService) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	project.ID = primitive.NewObjectID()
	project.EnsureDefaults()

	result, err := s.ProjectsCollection.InsertOne(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	project.ID = result.InsertedID.(primitive.ObjectID)
	return project, nil
}

// UpdateProject overwrites only the supplied fields and returns the updated
// document.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID primitive.ObjectID, fields bson.M) (*models.Project, error) {
	if len(fields) == 0 {
		return s.GetProjectByID(ctx, projectID)
	}

	var project models.Project
	err := s.ProjectsCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": projectID},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	project.EnsureDefaults()
	return &project, nil
}

// DeleteProject removes the project and every task referencing it. The two
// deletes are separate writes; if the second fails the tasks are already
// gone, which is logged rather than rolled back.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID primitive.ObjectID) error {
	count, err := s.ProjectsCollection.CountDocuments(ctx, bson.M{"_id": projectID})
	if err != nil {
		return fmt.Errorf("failed to look up project: %w", err)
	}
	if count == 0 {
		return ErrProjectNotFound
	}

	if _, err := s.TasksCollection.DeleteMany(ctx, bson.M{"project": projectID}); err != nil {
		return fmt.Errorf("failed to delete project tasks: %w", err)
	}

	if _, err := s.ProjectsCollection.DeleteOne(ctx, bson.M{"_id": projectID}); err != nil {
		logging.Logger.Warnf("Event ID: CASCADE_INCOMPLETE, Description: Tasks for project %s deleted but project removal failed: %v", projectID.Hex(), err)
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}
