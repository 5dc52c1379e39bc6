package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/auth"
	"github.com/cloudops-dev/cloudops/pkg/system"
)

// SessionCookie names the cookie that selects a visitor's credential scope.
const SessionCookie = "cloudops_session"

// sessionMiddleware makes sure every visitor carries a session cookie. Unknown
// or malformed values are replaced by a fresh random ID.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
		}
		// Refresh on every request so the cookie outlives idle gaps shorter than the TTL.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, sid, int(s.cfg.SessionTTL.Seconds()), "/", "", s.cfg.SecureCookie, true)
		c.Set(system.SessionIDKey, sid)
		c.Set(system.ReqLoggerKey, system.EnrichReqLoggerWithSession(c, system.GetReqLogger(c, s.log)))
		c.Next()
	}
}

func (s *Server) credentials(c *gin.Context) *auth.CredentialStore {
	return auth.NewCredentialStore(s.cfg.Sessions.ForSession(c.GetString(system.SessionIDKey)))
}

// flow builds the login flow of the current visitor. Navigation becomes an
// HTTP redirect.
func (s *Server) flow(c *gin.Context) *auth.Flow {
	nav := auth.NavigatorFunc(func(_ context.Context, target string) error {
		c.Redirect(http.StatusFound, target)
		return nil
	})
	f := auth.NewFlow(s.credentials(c), nav, system.GetReqLogger(c, s.log))
	f.HTTPClient = s.cfg.HTTPClient
	f.VerifierLength = s.cfg.VerifierLength
	f.RootURL = "/"
	return f
}
