package entity

import "time"

type Role string

const (
	RoleStudent         Role = "student"
	RoleCommunityLeader Role = "community_leader"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleCommunityLeader
}

type User struct {
	Id            string    `json:"id"`
	Name          string    `json:"name"`
	Photo         string    `json:"photo"`
	Branch        string    `json:"branch,omitempty"`
	Batch         string    `json:"batch,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	Role          Role      `json:"role"`
	CommunityName string    `json:"communityName,omitempty"`
	Online        bool      `json:"online"`
	LastSeen      time.Time `json:"lastSeen,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left as is.
type ProfileUpdate struct {
	Name          *string `json:"name"`
	Photo         *string `json:"photo"`
	Branch        *string `json:"branch"`
	Batch         *string `json:"batch"`
	Bio           *string `json:"bio"`
	Role          *Role   `json:"role"`
	CommunityName *string `json:"communityName"`
}

func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Photo == nil && p.Branch == nil && p.Batch == nil &&
		p.Bio == nil && p.Role == nil && p.CommunityName == nil
}

// DisplayProfile is the name and photo shown next to a chat or connection.
type DisplayProfile struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
	Bio   string `json:"bio,omitempty"`
}
