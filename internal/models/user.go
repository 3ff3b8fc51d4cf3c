package models

import "time"

// DefaultProfileImage is stored for every new profile until the
// user uploads a picture.
const DefaultProfileImage = "default.jpg"

type User struct {
	ID          string
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Password    string
	IsSuperuser bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Profile struct {
	UserID    string
	Image     string
	UpdatedAt time.Time
}
