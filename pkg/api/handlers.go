package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumenhq/console/pkg/directory"
	"github.com/lumenhq/console/pkg/httputil"
	"github.com/lumenhq/console/pkg/middleware"
	"github.com/lumenhq/console/pkg/rbac"
)

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	if authCtx == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	httputil.WriteSuccess(w, MeResponse{
		ID:             authCtx.Identity.ID,
		Email:          authCtx.Identity.Email,
		Name:           authCtx.Identity.Name,
		Roles:          authCtx.Identity.Roles,
		EffectiveRoles: authCtx.EffectiveRoles(),
		AccessLevel:    authCtx.AccessLevel(),
		IsAdmin:        authCtx.IsAdmin(),
		LandingPage:    s.evaluator.DefaultRedirect(authCtx.Identity.Roles),
	})
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	if authCtx == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	name := authCtx.Identity.Name
	if name == "" || name == "unknown" {
		name = authCtx.Identity.Email
	}

	httputil.WriteSuccess(w, DashboardResponse{
		Greeting:    fmt.Sprintf("Welcome back, %s", name),
		Initials:    directory.Initials(authCtx.Identity.Name),
		Roles:       authCtx.Identity.Roles,
		CanModerate: authCtx.HasAnyRole(rbac.RoleModerator),
		CanAdmin:    authCtx.IsAdmin(),
	})
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	if authCtx == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"email": authCtx.Identity.Email,
		"name":  authCtx.Identity.Name,
		"roles": authCtx.Identity.Roles,
	})
}

func (s *Server) getAdminOverview(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load directory users")
		httputil.WriteInternalError(w, err)
		return
	}

	active, err := s.users.ActiveUserCount(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to count active users")
		httputil.WriteInternalError(w, err)
		return
	}

	activities, err := s.users.RecentActivities(r.Context(), 10)
	if err != nil {
		s.logger.WithError(err).Error("failed to load activity feed")
		httputil.WriteInternalError(w, err)
		return
	}

	now := time.Now()
	views := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		views = append(views, ActivityView{
			ID:        a.ID,
			User:      a.User,
			Action:    a.Action,
			Type:      string(a.Type),
			Timestamp: directory.RelativeTime(a.CreatedAt, now),
			CreatedAt: a.CreatedAt,
		})
	}

	httputil.WriteSuccess(w, AdminOverviewResponse{
		TotalUsers:      len(users),
		ActiveUsers:     active,
		RecentActivity:  views,
		RoleDefinitions: s.registry.Definitions(),
	})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load directory users")
		httputil.WriteInternalError(w, err)
		return
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Initials:  directory.Initials(u.Name),
			Role:      u.Role,
			Status:    u.Status,
			LastLogin: directory.FormatDate(u.LastLogin),
			Avatar:    u.AvatarURL,
		})
	}
	httputil.WriteSuccess(w, views)
}

func (s *Server) addUser(w http.ResponseWriter, r *http.Request) {
	var req AddUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		httputil.WriteBadRequest(w, "name and email are required")
		return
	}
	if _, ok := s.registry.DefinitionOf(req.Role); !ok {
		httputil.WriteBadRequest(w, fmt.Sprintf("unknown role: %s", req.Role))
		return
	}

	user := &directory.User{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     strings.ToLower(req.Email),
		Role:      req.Role,
		Status:    directory.StatusActive,
		LastLogin: time.Now(),
	}
	if err := s.users.AddUser(r.Context(), user); err != nil {
		s.logger.WithError(err).Error("failed to add directory user")
		httputil.WriteInternalError(w, err)
		return
	}

	s.recordAdminActivity(r, fmt.Sprintf("Created new user account for %s", user.Email))
	httputil.WriteCreated(w, user)
}

func (s *Server) updateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if _, ok := s.registry.DefinitionOf(req.Role); !ok {
		httputil.WriteBadRequest(w, fmt.Sprintf("unknown role: %s", req.Role))
		return
	}

	if err := s.users.UpdateUserRole(r.Context(), id, req.Role); err != nil {
		if err == directory.ErrNotFound {
			httputil.WriteNotFoundError(w, "user not found")
			return
		}
		s.logger.WithError(err).Error("failed to update user role")
		httputil.WriteInternalError(w, err)
		return
	}

	s.recordAdminActivity(r, "Updated user permissions")
	httputil.WriteNoContent(w)
}

func (s *Server) updateUserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Status != directory.StatusActive && req.Status != directory.StatusInactive {
		httputil.WriteBadRequest(w, fmt.Sprintf("unknown status: %s", req.Status))
		return
	}

	if err := s.users.UpdateUserStatus(r.Context(), id, req.Status); err != nil {
		if err == directory.ErrNotFound {
			httputil.WriteNotFoundError(w, "user not found")
			return
		}
		s.logger.WithError(err).Error("failed to update user status")
		httputil.WriteInternalError(w, err)
		return
	}

	s.recordAdminActivity(r, fmt.Sprintf("Set user status to %s", req.Status))
	httputil.WriteNoContent(w)
}

func (s *Server) getMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.users.ListMessages(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load messages")
		httputil.WriteInternalError(w, err)
		return
	}

	now := time.Now()
	unread := 0
	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		if m.Unread {
			unread++
		}
		views = append(views, MessageView{
			ID:        m.ID,
			Sender:    m.Sender,
			Initials:  directory.Initials(m.Sender),
			Preview:   m.Preview,
			Unread:    m.Unread,
			Timestamp: directory.RelativeTime(m.CreatedAt, now),
		})
	}

	httputil.WriteSuccess(w, MessagesResponse{
		Messages: views,
		Unread:   unread,
	})
}

func (s *Server) getSupport(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, SupportResponse{
		FAQ: []FAQEntry{
			{
				Question: "How do I change my password?",
				Answer:   "You can change your password by going to Profile Settings > Security > Change Password.",
			},
			{
				Question: "How do I enable two-factor authentication?",
				Answer:   "Navigate to Settings > Privacy & Security > Two-Factor Authentication and click Enable.",
			},
			{
				Question: "Can I export my data?",
				Answer:   "Yes, you can export your account data from Settings > Privacy & Security > Data Export.",
			},
			{
				Question: "How do I delete my account?",
				Answer:   "Account deletion can be done from Settings > Danger Zone. This action is permanent and cannot be undone.",
			},
		},
		ContactEmail: "support@example.com",
		Systems: map[string]string{
			"api_services":   "operational",
			"authentication": "operational",
			"database":       "operational",
		},
	})
}

func (s *Server) getModerationQueue(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]interface{}{
		"queue":   []interface{}{},
		"pending": 0,
	})
}

func (s *Server) getDebug(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	if authCtx == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	resp := DebugResponse{
		Identity:   authCtx.Identity,
		RouteRules: s.evaluator.Rules(),
	}
	if sess := middleware.GetSession(r); sess != nil {
		resp.Profile = sess.Profile
		resp.SessionID = sess.ID
		resp.SessionExpiry = sess.ExpiresAt
	}
	httputil.WriteSuccess(w, resp)
}

// recordAdminActivity appends a feed entry attributed to the caller
func (s *Server) recordAdminActivity(r *http.Request, action string) {
	authCtx := middleware.GetAuthContext(r)
	actor := "System"
	if authCtx != nil && authCtx.Identity.Name != "" {
		actor = authCtx.Identity.Name
	}

	activity := &directory.Activity{
		ID:        uuid.New().String(),
		User:      actor,
		Action:    action,
		Type:      directory.ActivityUser,
		CreatedAt: time.Now(),
	}
	if err := s.users.RecordActivity(r.Context(), activity); err != nil {
		s.logger.WithError(err).Warn("failed to record activity")
	}
}
