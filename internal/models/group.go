package models

// Role of a user within a group.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Member is one user's membership in a group.
type Member struct {
	// UserID references the member's user account.
	UserID string `json:"userId"`

	// Role is "admin" for the creator, "member" for everyone else.
	Role Role `json:"role"`

	// JoinedAt is the Unix timestamp when the user joined the group.
	JoinedAt int64 `json:"joinedAt"`
}

// Group represents a named set of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g. "Roommates").
	Name string `json:"name"`

	// Description is an optional free-form description.
	Description string `json:"description,omitempty"`

	// Members is the list of group memberships. User ids are unique
	// within a group; the creator is always present as admin.
	Members []Member `json:"members"`

	// CreatedBy is the user ID of the group's creator.
	CreatedBy string `json:"createdBy"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"createdAt"`
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the user ids of all members, in membership order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}
