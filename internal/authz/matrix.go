package authz

import "strings"

// Role is the closed set of roles known to the system. Raw role strings
// coming from the identity boundary are normalized exactly once via
// ParseRole; everything past that boundary switches on this type.
type Role string

const (
	RoleClient         Role = "client"
	RoleDesigner       Role = "designer"
	RoleProjectManager Role = "project_manager"
	RoleUnknown        Role = ""
)

// ParseRole normalizes a raw role string into the closed enum.
// Unrecognized values map to RoleUnknown, which holds zero capabilities.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "client", "cliente":
		return RoleClient
	case "designer", "diseñador", "disenador":
		return RoleDesigner
	case "project_manager", "pm", "manager":
		return RoleProjectManager
	default:
		return RoleUnknown
	}
}

// Action is an operation gated by the role matrix.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
)

// ListScope describes which projects a role may see when listing.
// The scope must be applied at the query layer; it is a security
// boundary, not a display filter.
type ListScope int

const (
	ScopeNone ListScope = iota
	ScopeOwn            // projects created by the caller
	ScopeAssigned       // projects assigned to the caller
	ScopeAll
)

// Authorize reports whether a role may perform an action on a project,
// given the caller's relationship to it. Pure and total: unknown roles
// are denied everything.
func Authorize(role Role, action Action, isOwner, isAssignee bool) bool {
	switch role {
	case RoleClient:
		switch action {
		case ActionCreate, ActionList:
			return true
		case ActionRead:
			return isOwner
		default:
			return false
		}
	case RoleDesigner:
		switch action {
		case ActionList:
			return true
		case ActionRead:
			return isAssignee
		default:
			return false
		}
	case RoleProjectManager:
		return true
	default:
		return false
	}
}

// Scope returns the list scope for a role.
func Scope(role Role) ListScope {
	switch role {
	case RoleClient:
		return ScopeOwn
	case RoleDesigner:
		return ScopeAssigned
	case RoleProjectManager:
		return ScopeAll
	default:
		return ScopeNone
	}
}
