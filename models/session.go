package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session tracks the last activity for one email. There is at most one
// session document per email; identity is the email itself, there is no
// separate token.
type Session struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	LastActivity time.Time          `bson:"lastActivity" json:"lastActivity"`
}
