package auth

import "strings"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleClient    Role = "client"
)

// ParseRole normalizes a role string. Unknown values are rejected rather
// than defaulted: role is assigned once at registration and never guessed.
func ParseRole(role string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleAdmin):
		return RoleAdmin, true
	case string(RoleOrganizer):
		return RoleOrganizer, true
	case string(RoleClient):
		return RoleClient, true
	default:
		return "", false
	}
}
