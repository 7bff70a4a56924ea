package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	Phone        string             `json:"phone,omitempty" bson:"phone,omitempty"`
	PasswordHash string             `json:"-" bson:"password"`
	Role         string             `json:"role" bson:"role"`
	IsVerified   bool               `json:"is_verified" bson:"is_verified"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	LastLogin    *time.Time         `json:"last_login,omitempty" bson:"last_login,omitempty"`
}
