package models

import (
	"time"
)

// Access token issued by TokenManager on login
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
