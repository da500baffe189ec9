package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	IsAdmin   bool               `bson:"is_admin" json:"isAdmin"`
	IsBlocked bool               `bson:"is_blocked" json:"isBlocked"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Public returns the fields safe to hand back to clients. The password
// hash is already excluded from JSON, but admin listings decode raw
// documents, so handlers use this instead of the full struct.
func (u User) Public() map[string]interface{} {
	return map[string]interface{}{
		"id":        u.ID,
		"username":  u.Username,
		"email":     u.Email,
		"isAdmin":   u.IsAdmin,
		"isBlocked": u.IsBlocked,
		"createdAt": u.CreatedAt,
	}
}
