// Package model defines the data structures used throughout the application.
package model

import "time"

// User is the public view of an account: everything except the password.
// It is what the session holds and what handlers return.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	JoinDate       time.Time `json:"joinDate"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
}

// Account is a User as stored in the credential collection.
//
// EMBEDDING:
// encoding/json flattens embedded structs, so an Account serializes as
// {"id":..., "name":..., "password":...}, one flat object matching the
// persisted layout, while Profile() can hand back the User part alone.
//
// The password is stored in plain text.
type Account struct {
	User
	Password string `json:"password"`
}

// Profile returns the account with the password stripped.
func (a Account) Profile() User {
	return a.User
}
