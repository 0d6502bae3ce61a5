package domain

import "time"

type ClaimStatus string

const (
	StatusNew      ClaimStatus = "New"
	StatusInReview ClaimStatus = "In Review"
	StatusClosed   ClaimStatus = "Closed"
)

var ClaimStatuses = []ClaimStatus{StatusNew, StatusInReview, StatusClosed}

func (s ClaimStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInReview, StatusClosed:
		return true
	}
	return false
}

type AdminRole string

const (
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "super-admin"
)

var AdminRoles = []AdminRole{RoleAdmin, RoleSuperAdmin}

func (r AdminRole) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// DateLayout is the calendar date format used for Claim.Date.
const DateLayout = "2006-01-02"

type Claim struct {
	ID           uint        `json:"id"`
	ClaimantName string      `json:"claimant_name"`
	Date         string      `json:"date"`
	Status       ClaimStatus `json:"status"`
	Summary      string      `json:"summary"`
	Details      string      `json:"details"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ClaimNote is append-only. AuthorName is resolved at read time and stays
// nil when the author id no longer matches a user.
type ClaimNote struct {
	ID         uint      `json:"id"`
	ClaimID    uint      `json:"claim_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName *string   `json:"author_name,omitempty"`
	Note       string    `json:"note"`
	Timestamp  time.Time `json:"timestamp"`
}

type AdminUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      AdminRole `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateClaimInput struct {
	ClaimantName string      `json:"claimant_name"`
	Date         string      `json:"date"`
	Status       ClaimStatus `json:"status,omitempty"`
	Summary      string      `json:"summary"`
	Details      string      `json:"details"`
}

type CreateNoteInput struct {
	ClaimID  uint   `json:"claim_id"`
	AuthorID string `json:"author_id"`
	Note     string `json:"note"`
}

type CreateAdminInput struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  AdminRole `json:"role"`
}

// Identity is one of the demo personas the UI can act as. It carries no
// credentials and is never verified by the API.
type Identity struct {
	UserID uint      `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   AdminRole `json:"role"`
}

func (i Identity) IsSuperAdmin() bool {
	return i.Role == RoleSuperAdmin
}

// DemoUsers are seeded by the schema initializer and back the UI role
// switcher.
var DemoUsers = []AdminUser{
	{ID: 1, Name: "Jane Smith", Email: "jane@claimbridge.com", Role: RoleSuperAdmin},
	{ID: 2, Name: "John Doe", Email: "john@claimbridge.com", Role: RoleAdmin},
}
