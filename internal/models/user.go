package models

import "time"

// User is a registered account. Username is the identity and never changes.
// PasswordHash is never serialized; boundary responses carry only profile data.
type User struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// UserSummary is the listing projection: no phone, no timestamps.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserContact is the projection embedded in message payloads as
// from_user/to_user. Always keyed by username, never by a numeric id.
type UserContact struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Contact projects a full User row into the embeddable contact shape.
func (u *User) Contact() UserContact {
	return UserContact{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}
