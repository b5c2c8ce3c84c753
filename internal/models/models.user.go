package models

// User is an operator account as stored under users/<uid>. The password hash
// never leaves the hub.
type User struct {
	UID          string `json:"uid,omitempty"`
	DisplayName  string `json:"displayName"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash,omitempty"`
	CreatedAt    int64  `json:"createdAt,omitempty"`
}

// Public returns a copy safe to hand to API clients.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
