package entities

import (
	"time"

	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

// Organization groups applications under a shared membership structure.
// Name is a slug, unique across the system.
type Organization struct {
	OrgID       string
	Name        string
	DisplayName string
	Description string
	Visibility  access.Visibility
	IconPath    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Member is one user's role on one organization. Unique per (org, user).
type Member struct {
	OrgID     string
	UserID    string
	Role      access.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
