package constants

// Roles are derived per request: the platform owner address gets Owner, every
// other authenticated account gets Holder.
const (
	Owner  = "owner"
	Holder = "holder"
)

// ValidRoles is the set of roles a session can resolve to.
var ValidRoles = []string{Holder, Owner}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
