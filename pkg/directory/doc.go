// Package directory is the SQL-backed user directory behind the admin
// pages.
//
// # Overview
//
// The directory stores the managed user accounts and the activity feed
// the admin dashboard renders. It runs on SQLite by default and on
// PostgreSQL when a database URL is configured; all queries stay within
// the shared dialect subset.
package directory
