package models

import "time"

type User struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	TrafficSource string    `json:"traffic_source"`
	Password      string    `json:"-"` // bcrypt hash, never exposed in API responses
	Avatar        string    `json:"avatar"`
	OTP           *string   `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// Identity is the minimal view of a user carried in the session token
// and returned by the login and session endpoints.
type Identity struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"image"`
}
