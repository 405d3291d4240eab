package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"task-manager/backend/models"
)

// SessionTimeout is the sliding expiry window. A session older than this is
// deleted on the next check.
const SessionTimeout = 60 * time.Second

type SessionService struct {
	SessionsCollection *mongo.Collection
}

func NewSessionService(sessionsCollection *mongo.Collection) *SessionService {
	return &SessionService{SessionsCollection: sessionsCollection}
}

// Refresh upserts the session for email with lastActivity set to now. The
// upsert keyed on email keeps at most one session per email.
func (s *SessionService) Refresh(ctx context.Context, email string) error {
	filter := bson.M{"email": email}
	update := bson.M{"$set": bson.M{"email": email, "lastActivity": time.Now()}}

	_, err := s.SessionsCollection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	return nil
}

// Verify checks the session for email. An absent session yields
// ErrNoSession. An expired one is deleted and yields ErrSessionExpired.
// A live one gets its lastActivity refreshed.
func (s *SessionService) Verify(ctx context.Context, email string) error {
	var session models.Session
	err := s.SessionsCollection.FindOne(ctx, bson.M{"email": email}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return ErrNoSession
	}
	if err != nil {
		return fmt.Errorf("failed to look up session: %w", err)
	}

	if expired(session.LastActivity, time.Now()) {
		if _, err := s.SessionsCollection.DeleteOne(ctx, bson.M{"email": email}); err != nil {
			return fmt.Errorf("failed to delete expired session: %w", err)
		}
		return ErrSessionExpired
	}

	return s.Refresh(ctx, email)
}

func expired(lastActivity, now time.Time) bool {
	return now.Sub(lastActivity) > SessionTimeout
}
