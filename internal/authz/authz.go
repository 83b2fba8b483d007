// Package authz resolves roles to capability sets through a small static
// table, so permission checks are testable independently of any UI.
package authz

import "github.com/modelgov/modelgov/pkg/model"

// Capability is one coarse permission over the registry.
type Capability string

// The set of capabilities.
const (
	ViewModels   Capability = "view_models"
	EditModels   Capability = "edit_models"
	DeleteModels Capability = "delete_models"
	ManageUsers  Capability = "manage_users"
)

var roleCapabilities = map[model.Role][]Capability{
	model.RoleAdmin:  {ViewModels, EditModels, DeleteModels, ManageUsers},
	model.RoleEditor: {ViewModels, EditModels},
	model.RoleViewer: {ViewModels},
}

// Can reports whether the role grants the capability. Unknown roles grant
// nothing.
func Can(role model.Role, capability Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// Capabilities returns the capability set of a role.
func Capabilities(role model.Role) []Capability {
	return roleCapabilities[role]
}
