package api

import (
	"net/http"
	"strings"

	"github.com/lumenhq/console/pkg/httputil"
	"github.com/lumenhq/console/pkg/middleware"
)

// pageTitles maps the console's page paths to their display titles
var pageTitles = map[string]string{
	"/":          "Home",
	"/dashboard": "Dashboard",
	"/moderator": "Moderation",
	"/admin":     "Admin Dashboard",
}

// servePage answers guarded page requests with a page descriptor. The
// route guard has already evaluated access by the time this runs.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	title, ok := pageTitles[path]
	if !ok {
		// Nested pages inherit their section's title
		for prefix, t := range pageTitles {
			if prefix != "/" && strings.HasPrefix(path, prefix+"/") {
				title = t
				ok = true
				break
			}
		}
	}
	if !ok {
		httputil.WriteNotFoundError(w, "page not found")
		return
	}

	resp := map[string]interface{}{
		"path":  path,
		"title": title,
	}
	if authCtx := middleware.GetAuthContext(r); authCtx != nil {
		resp["user"] = authCtx.Identity.Email
		resp["roles"] = authCtx.Identity.Roles
	}
	httputil.WriteSuccess(w, resp)
}
