package model

// Role classifies an author's part in the protest conversation. Assigned by
// downstream analysis; every other Author field is fixed at normalization.
type Role string

const (
	RoleOrganizer     Role = "organizer"
	RoleDocumentarian Role = "documentarian"
	RoleCreative      Role = "creative"
	RoleUnclassified  Role = "unclassified"
)

// Author is a posting account. Referenced by many posts.
type Author struct {
	Handle      string   `json:"handle"`
	DisplayName string   `json:"display_name,omitempty"`
	Platform    Platform `json:"platform"`
	Role        Role     `json:"role"`
}
