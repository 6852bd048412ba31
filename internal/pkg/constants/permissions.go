package constants

const (
	RegisterProject   = "register_project"
	DeactivateProject = "deactivate_project"
	ListCredits       = "list_credits"
	BuyCredits        = "buy_credits"
	RetireCredits     = "retire_credits"
	TransferCredits   = "transfer_credits"
	VerifyProject     = "verify_project"
	ManageFees        = "manage_fees"
	TransferOwnership = "transfer_ownership"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	RegisterProject:   {Holder, Owner},
	DeactivateProject: {Holder, Owner},
	ListCredits:       {Holder, Owner},
	BuyCredits:        {Holder, Owner},
	RetireCredits:     {Holder, Owner},
	TransferCredits:   {Holder, Owner},
	VerifyProject:     {Owner},
	ManageFees:        {Owner},
	TransferOwnership: {Owner},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
