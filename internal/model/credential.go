package model

import "time"

// Credential is a single persisted session value (access token, refresh
// token or username) stored under a fixed key, mirroring the browser
// client's local storage layout.
type Credential struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// Fixed credential keys. Absence of all three denotes "logged out".
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUsername     = "username"
)
