package model

import "time"

// User represents an application user record as stored in the `user`
// table. The json tags are omitted because these structs are used
// internally by the repository layer; handlers define separate response
// types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  FirstName    – given name.
//  LastName     – family name.
//  Email        – unique, normalized (lowercased) email address.
//  PasswordHash – bcrypt hashed password; never serialized.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // user.id
	FirstName    string    // user.first_name
	LastName     string    // user.last_name
	Email        string    // user.email
	PasswordHash string    // user.password_hash
	CreatedAt    time.Time // user.created_at
	UpdatedAt    time.Time // user.updated_at
}
