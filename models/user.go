package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a registered account. The password field always holds a bcrypt
// hash, never the plaintext.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
}
