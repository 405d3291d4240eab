package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"task-manager/backend/logging"
	"task-manager/backend/models"
)

type UserService struct {
	UserCollection *mongo.Collection
	Sessions       *SessionService
}

func NewUserService(userCollection *mongo.Collection, sessions *SessionService) *UserService {
	return &UserService{
		UserCollection: userCollection,
		Sessions:       sessions,
	}
}

// RegisterUser creates an account after checking the email is free. The
// password is stored as a bcrypt hash.
func (s *UserService) RegisterUser(ctx context.Context, name, email, password string) error {
	count, err := s.UserCollection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
	}

	if _, err := s.UserCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: Registered user %s", email)
	return nil
}

// LoginUser authenticates by email and password. The session is refreshed
// as soon as the user is found, before the password is compared, matching
// the historical behavior clients rely on.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.Sessions.Refresh(ctx, email); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GetUserByEmail fetches a user for the lookup endpoint.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}
