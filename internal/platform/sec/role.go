// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Reviews submissions and manages every initiative
	RoleAdmin UserRole = "admin"

	// Proposes initiatives and manages the postulations they receive
	RolePromoter UserRole = "promoter"

	// Default role: applies to initiatives as collaborator, co-founder or investor
	RoleMember UserRole = "member"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RolePromoter:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}
