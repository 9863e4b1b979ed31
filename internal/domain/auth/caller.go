package auth

import "slices"

const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// Caller is the resolved identity every core entry point receives. The shop list is
// trusted as given and never re-derived.
type Caller struct {
	UserID  string
	Role    string
	ShopIDs []string
}

func FromClaims(claims *Claims) Caller {
	return Caller{UserID: claims.UserID, Role: claims.Role, ShopIDs: slices.Clone(claims.ShopIDs)}
}

func (c Caller) CanAccess(shopID string) bool {
	return shopID != "" && slices.Contains(c.ShopIDs, shopID)
}

func (c Caller) HasRole(roles ...string) bool {
	return slices.Contains(roles, c.Role)
}
