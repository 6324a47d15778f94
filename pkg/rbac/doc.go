// Package rbac implements hierarchical role-based access control for the
// Console dashboard.
//
// # Overview
//
// The system has a fixed, closed role set (Admin > Moderator > User >
// Guest) ordered by a numeric level. Holding a role grants everything
// beneath it in the hierarchy, except for route rules that demand direct
// membership of an exact role.
//
// # Key Components
//
// Registry: role metadata and hierarchy math
//
//	reg := rbac.NewRegistry(cfg.Roles)
//	reg.AccessLevel([]rbac.Role{rbac.RoleModerator}) // 50
//	reg.CanActAs(roles, rbac.RoleUser)               // hierarchy check
//
// Extractor: resolves roles from identity-provider profile claims,
// trying the custom claims namespace, the roles field, app_metadata.roles,
// and the admin email allow-list in order. Always yields at least the
// configured default role.
//
// Evaluator: route rule table with exact and "/*" prefix matching
//
//	dec := ev.CanAccess(roles, "/admin")
//	if !dec.Allowed {
//		http.Redirect(w, r, dec.RedirectTo, http.StatusSeeOther)
//	}
//
// ContextBuilder: composes the above into the per-request Context exposed
// to handlers. Token-derived roles win over profile claims; construction
// never fails (a default-role context is the floor).
//
// # Failure Semantics
//
// Nothing in this package returns an error to its caller. Extraction
// strategies are panic-isolated, unmatched routes are allowed, and a
// broken profile shape degrades to the default role.
//
// # Related Packages
//
//   - pkg/claims: token decoding and the token claim cache
//   - pkg/middleware: HTTP enforcement of route rules
//   - pkg/session: OIDC session source feeding profiles and tokens
package rbac
