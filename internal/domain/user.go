package domain

// Role represents a platform-level user role.
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// Membership describes the user's membership in one organization.
type Membership struct {
	ID           int64  `json:"id"`
	OrgName      string `json:"orgName"`
	Slug         string `json:"slug"`
	Role         string `json:"role"`
	MembershipID int64  `json:"membershipId"`
}

// User represents an authenticated user as reported by the backend.
type User struct {
	ID                    int64        `json:"id"`
	Username              string       `json:"username"`
	Email                 string       `json:"email"`
	Role                  Role         `json:"role"`
	CurrentOrganizationID *int64       `json:"currentOrganizationId"`
	Organizations         []Membership `json:"organizations"`
}
