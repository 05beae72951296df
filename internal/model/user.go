package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role names carried in the token's role claim.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a document in the `users` collection.
//
// Fields:
//  ID           – ObjectID primary key (24 hex chars on the wire).
//  Name         – display name.
//  Email        – unique, lowercased address.
//  PasswordHash – bcrypt hash; never serialized to clients.
//  Phone        – optional 10–15 digit string.
//  IsAdmin      – grants the admin role at login.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password" json:"-"`
	Phone        string        `bson:"phone,omitempty" json:"phone,omitempty"`
	IsAdmin      bool          `bson:"isAdmin" json:"isAdmin"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the projection returned by the auth endpoints.
type PublicUser struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Public strips everything but the identity fields.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}
