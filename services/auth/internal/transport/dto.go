package transport

import "time"

type Credentials struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	Email       string
	FirstName   string
	LastName    string
}
