package directory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/lumenhq/console/pkg/rbac"
)

// Store is the SQL-backed user directory behind the admin pages. It
// works against SQLite for single-node deployments and PostgreSQL for
// shared ones; queries stick to the common subset of both dialects.
type Store struct {
	db     *sql.DB
	driver string
}

// NewStore opens the directory database and ensures the schema exists
func NewStore(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(1 * time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping directory database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithDB wraps an existing connection; used by tests
func NewStoreWithDB(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// DB exposes the underlying connection for health checks
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL,
			status TEXT NOT NULL,
			last_login TIMESTAMP NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			action TEXT NOT NULL,
			activity_type TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_created_at ON activities(created_at)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			sender TEXT NOT NULL,
			preview TEXT NOT NULL,
			unread BOOLEAN NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// placeholder renders the dialect's bind parameter for position n
func (s *Store) placeholder(n int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// ListUsers returns all directory users ordered by name
func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, role, status, last_login, avatar_url FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.LastLogin, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// GetUser returns one user by ID
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(
		`SELECT id, name, email, role, status, last_login, avatar_url FROM users WHERE id = %s`,
		s.placeholder(1))

	var u User
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.LastLogin, &u.AvatarURL)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// AddUser inserts a new directory user
func (s *Store) AddUser(ctx context.Context, u *User) error {
	query := fmt.Sprintf(
		`INSERT INTO users (id, name, email, role, status, last_login, avatar_url) VALUES (%s, %s, %s, %s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4),
		s.placeholder(5), s.placeholder(6), s.placeholder(7))

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, string(u.Role), string(u.Status), u.LastLogin, u.AvatarURL)
	if err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	return nil
}

// UpdateUserRole changes a user's role
func (s *Store) UpdateUserRole(ctx context.Context, id string, role rbac.Role) error {
	query := fmt.Sprintf(`UPDATE users SET role = %s WHERE id = %s`,
		s.placeholder(1), s.placeholder(2))

	res, err := s.db.ExecContext(ctx, query, string(role), id)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUserStatus changes a user's account state
func (s *Store) UpdateUserStatus(ctx context.Context, id string, status UserStatus) error {
	query := fmt.Sprintf(`UPDATE users SET status = %s WHERE id = %s`,
		s.placeholder(1), s.placeholder(2))

	res, err := s.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordLogin bumps a user's last login timestamp, matched by email
func (s *Store) RecordLogin(ctx context.Context, email string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE users SET last_login = %s WHERE email = %s`,
		s.placeholder(1), s.placeholder(2))
	if _, err := s.db.ExecContext(ctx, query, at, email); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// ActiveUserCount returns how many users are in the Active state
func (s *Store) ActiveUserCount(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE status = %s`, s.placeholder(1))

	var count int
	if err := s.db.QueryRowContext(ctx, query, string(StatusActive)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}

// RecordActivity appends an entry to the activity feed
func (s *Store) RecordActivity(ctx context.Context, a *Activity) error {
	query := fmt.Sprintf(
		`INSERT INTO activities (id, username, action, activity_type, created_at) VALUES (%s, %s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4), s.placeholder(5))

	_, err := s.db.ExecContext(ctx, query, a.ID, a.User, a.Action, string(a.Type), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// RecentActivities returns the newest feed entries, capped at limit
func (s *Store) RecentActivities(ctx context.Context, limit int) ([]*Activity, error) {
	query := fmt.Sprintf(
		`SELECT id, username, action, activity_type, created_at FROM activities ORDER BY created_at DESC LIMIT %s`,
		s.placeholder(1))

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []*Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.User, &a.Action, &a.Type, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, &a)
	}
	return activities, rows.Err()
}

// AddMessage inserts an inbox conversation entry
func (s *Store) AddMessage(ctx context.Context, m *Message) error {
	query := fmt.Sprintf(
		`INSERT INTO messages (id, sender, preview, unread, created_at) VALUES (%s, %s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4), s.placeholder(5))

	_, err := s.db.ExecContext(ctx, query, m.ID, m.Sender, m.Preview, m.Unread, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}
	return nil
}

// ListMessages returns inbox conversations, newest first
func (s *Store) ListMessages(ctx context.Context) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender, preview, unread, created_at FROM messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Preview, &m.Unread, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// Close releases the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
