package member

import "time"

// Membership data is owned by the user-management system; this package only
// reads it to resolve roster eligibility and display labels.

type Level struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Member struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	LevelID   string    `json:"level_id"` // empty when not assigned to a level
	IsActive  bool      `json:"is_active"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (m Member) FullName() string {
	if m.FirstName == "" {
		return m.LastName
	}
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// HasLevel reports whether the member belongs to any of the given levels.
// A member with no level assignment never qualifies.
func (m Member) HasLevel(levelIDs []string) bool {
	if m.LevelID == "" {
		return false
	}
	for _, id := range levelIDs {
		if m.LevelID == id {
			return true
		}
	}
	return false
}
