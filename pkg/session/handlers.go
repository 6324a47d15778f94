package session

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lumenhq/console/pkg/config"
	"github.com/lumenhq/console/pkg/observability"
	"github.com/lumenhq/console/pkg/rbac"
)

const (
	stateCookie    = "console_auth_state"
	returnToCookie = "console_return_to"
)

// Handlers implements the login, callback and logout endpoints
type Handlers struct {
	provider  *Provider
	store     Store
	builder   *rbac.ContextBuilder
	evaluator *rbac.Evaluator
	cfg       config.SessionConfig
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewHandlers creates the auth endpoint handlers
func NewHandlers(provider *Provider, store Store, builder *rbac.ContextBuilder, evaluator *rbac.Evaluator, cfg config.SessionConfig, logger *observability.Logger, metrics *observability.Metrics) *Handlers {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Handlers{
		provider:  provider,
		store:     store,
		builder:   builder,
		evaluator: evaluator,
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
	}
}

// RegisterRoutes mounts the auth endpoints on the router
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodGet)
	r.HandleFunc("/auth/callback", h.Callback).Methods(http.MethodGet)
	r.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodGet)
}

// Login starts the authorization code flow
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		h.logger.WithError(err).Error("failed to generate login state")
		http.Error(w, "failed to start login", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// Remember where to land after login, when the guard sent us here
	if returnTo := r.URL.Query().Get("return_to"); isSafeReturnTo(returnTo) {
		http.SetCookie(w, &http.Cookie{
			Name:     returnToCookie,
			Value:    returnTo,
			Path:     "/",
			MaxAge:   300,
			HttpOnly: true,
			Secure:   h.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback finishes the code flow, creates a session and redirects the
// user to their role's landing page.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		http.Error(w, "missing state cookie", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != cookie.Value {
		h.recordLogin("invalid_state")
		http.Error(w, "invalid state parameter", http.StatusBadRequest)
		return
	}
	clearCookie(w, stateCookie, h.cfg.CookieSecure)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.recordLogin("missing_code")
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	claims, rawIDToken, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.recordLogin("exchange_failed")
		h.logger.WithError(err).Error("authorization code exchange failed")
		http.Error(w, "login failed", http.StatusBadGateway)
		return
	}

	now := time.Now()
	sess := &Session{
		ID:         uuid.New().String(),
		Profile:    claims,
		RawIDToken: rawIDToken,
		CreatedAt:  now,
		ExpiresAt:  now.Add(h.cfg.TTL),
	}
	if err := h.store.Create(r.Context(), sess); err != nil {
		h.recordLogin("store_failed")
		h.logger.WithError(err).Error("failed to persist session")
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	authCtx := h.builder.Build(claims, rawIDToken)
	h.recordLogin("success")
	h.logger.WithFields(map[string]interface{}{
		"user_id": authCtx.Identity.ID,
		"roles":   authCtx.Identity.Roles,
	}).Info("user logged in")

	target := h.evaluator.DefaultRedirect(authCtx.Identity.Roles)
	if returnCookie, err := r.Cookie(returnToCookie); err == nil {
		if isSafeReturnTo(returnCookie.Value) {
			target = returnCookie.Value
		}
		clearCookie(w, returnToCookie, h.cfg.CookieSecure)
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Logout deletes the session and clears the cookie
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cfg.CookieName); err == nil {
		if err := h.store.Delete(r.Context(), cookie.Value); err != nil {
			h.logger.WithError(err).Warn("failed to delete session")
		}
	}
	clearCookie(w, h.cfg.CookieName, h.cfg.CookieSecure)

	if h.metrics != nil {
		h.metrics.LogoutsTotal.Inc()
	}

	if logoutURL := h.provider.LogoutURL(r.URL.Query().Get("return_to")); logoutURL != "" {
		http.Redirect(w, r, logoutURL, http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) recordLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func randomState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// isSafeReturnTo permits only same-site absolute paths
func isSafeReturnTo(target string) bool {
	return strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//")
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
