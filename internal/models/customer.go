package models

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Name           string
	Surname        string
	TCKN           string
	IsEmployee     bool
	HashedPassword string
}

// Identity is the authenticated caller resolved from an access token
type Identity struct {
	CustomerID uuid.UUID
	IsEmployee bool
}

// CanAccess reports whether the caller may act on resources owned by ownerID
func (i Identity) CanAccess(ownerID uuid.UUID) bool {
	return i.IsEmployee || i.CustomerID == ownerID
}

// CanApprove reports whether the caller may settle pending transactions
func (i Identity) CanApprove() bool {
	return i.IsEmployee
}
