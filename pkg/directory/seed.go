package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenhq/console/pkg/rbac"
)

// Seed loads demo users, activity entries, and inbox messages into an
// empty directory.
// Existing data is left untouched.
func (s *Store) Seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("failed to check directory state: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	users := []*User{
		{ID: "1", Name: "John Doe", Email: "john@example.com", Role: rbac.RoleAdmin, Status: StatusActive, LastLogin: now.AddDate(0, 0, -1), AvatarURL: "https://i.pravatar.cc/150?img=1"},
		{ID: "2", Name: "Jane Smith", Email: "jane@example.com", Role: rbac.RoleModerator, Status: StatusActive, LastLogin: now.AddDate(0, 0, -2), AvatarURL: "https://i.pravatar.cc/150?img=2"},
		{ID: "3", Name: "Bob Johnson", Email: "bob@example.com", Role: rbac.RoleUser, Status: StatusInactive, LastLogin: now.AddDate(0, 0, -6), AvatarURL: "https://i.pravatar.cc/150?img=3"},
		{ID: "4", Name: "Alice Williams", Email: "alice@example.com", Role: rbac.RoleUser, Status: StatusActive, LastLogin: now.AddDate(0, 0, -1), AvatarURL: "https://i.pravatar.cc/150?img=4"},
	}
	for _, u := range users {
		if err := s.AddUser(ctx, u); err != nil {
			return err
		}
	}

	activities := []*Activity{
		{ID: "1", User: "John Doe", Action: "Updated user permissions", Type: ActivityUser, CreatedAt: now.Add(-2 * time.Minute)},
		{ID: "2", User: "System", Action: "Backup completed successfully", Type: ActivitySystem, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "3", User: "Jane Smith", Action: "Modified security settings", Type: ActivitySecurity, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "4", User: "Bob Johnson", Action: "Created new user account", Type: ActivityUser, CreatedAt: now.Add(-5 * time.Hour)},
	}
	for _, a := range activities {
		if err := s.RecordActivity(ctx, a); err != nil {
			return err
		}
	}

	messages := []*Message{
		{ID: "1", Sender: "Support Team", Preview: "Welcome to the console! How can we help?", Unread: true, CreatedAt: now.Add(-2 * time.Minute)},
		{ID: "2", Sender: "System", Preview: "Your profile has been updated successfully", Unread: false, CreatedAt: now.Add(-1 * time.Hour)},
	}
	for _, m := range messages {
		if err := s.AddMessage(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
