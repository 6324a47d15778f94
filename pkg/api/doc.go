// Package api implements the console's JSON endpoints.
//
// # Overview
//
// The API sits behind the session middleware and route guard, so every
// handler can assume an auth context is attached when the caller is
// logged in. Admin and moderator endpoints add explicit role checks on
// their subrouters as defense in depth for direct API callers.
//
// # Endpoints
//
//   - /api/me: the caller's resolved identity and access
//   - /api/dashboard, /api/dashboard/settings: user dashboard data
//   - /api/admin/...: user directory management and the activity feed
//   - /api/moderator: the moderation queue
//   - /api/debug: resolved auth state for troubleshooting
package api
