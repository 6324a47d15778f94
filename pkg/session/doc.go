// Package session implements login sessions backed by OpenID Connect.
//
// # Overview
//
// The package covers the full login lifecycle: redirecting to the
// identity provider, exchanging the authorization code, verifying the
// returned ID token and persisting the resulting session. Sessions keep
// both the provider's claims and the raw ID token so the RBAC layer can
// extract roles from either.
//
// # Key Components
//
//   - Provider: OIDC discovery, code exchange and ID token verification
//   - Session / Store: the persisted login and its storage interface
//   - MemoryStore: single-instance store with a background sweep
//   - RedisStore: shared store for multi-replica deployments
//   - Handlers: the /auth/login, /auth/callback and /auth/logout endpoints
package session
