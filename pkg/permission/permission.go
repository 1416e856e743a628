// Package permission answers "may this persona do X" questions.
//
// HasPermission is the pure membership query every view uses. Policy layers
// optional rule expressions on top (expr, CEL or, with the js_eval build tag,
// JavaScript) for actions that depend on more than a single permission name.
package permission

import (
	"slices"

	"github.com/goliatone/go-paqs-store/pkg/directory"
)

// Permission names issued by the roster source.
const (
	View   = "view"
	Update = "update"
	Create = "create"
	Assign = "assign"
)

// Role names issued by the roster source.
const (
	RoleViewer  = "Viewer"
	RoleEditor  = "Editor"
	RoleCreator = "Creator"
	RoleAdmin   = "Admin"
)

// HasPermission reports whether persona holds permission. A nil persona holds
// nothing.
func HasPermission(persona *directory.Persona, permission string) bool {
	if persona == nil {
		return false
	}
	return slices.Contains(persona.Permissions, permission)
}
