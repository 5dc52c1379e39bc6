package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cloudops-dev/cloudops/pkg/apiresponses"
	"github.com/cloudops-dev/cloudops/pkg/audit"
	"github.com/cloudops-dev/cloudops/pkg/dashboard"
	"github.com/cloudops-dev/cloudops/pkg/metrics"
	"github.com/cloudops-dev/cloudops/pkg/system"
	"github.com/cloudops-dev/cloudops/pkg/version"
)

const metricsSource = "web"

func (s *Server) login(c *gin.Context) {
	if err := s.flow(c).BeginLogin(c.Request.Context(), s.cfg.Auth); err != nil {
		s.respondFlowError(c, err)
		return
	}
	metrics.LoginStarted.WithLabelValues(metricsSource).Inc()
	s.audit.Record(c.Request.Context(), s.auditEvent(c, audit.EventLoginStarted, ""))
}

func (s *Server) callback(c *gin.Context) {
	reqLog := system.GetReqLogger(c, s.log)
	start := time.Now()
	tokens, err := s.flow(c).CompleteLogin(c.Request.Context(), c.Request.URL.Query(), s.cfg.Auth)
	metrics.CallbackDuration.WithLabelValues(metricsSource).Observe(time.Since(start).Seconds())
	if err != nil {
		_, code := apiresponses.ClassifyAuthError(err)
		metrics.CallbackOutcomes.WithLabelValues(metricsSource, strings.ToLower(code)).Inc()
		s.audit.Record(c.Request.Context(), s.auditEvent(c, audit.EventLoginFailed, "").WithDetail("code", code))
		s.respondFlowError(c, err)
		return
	}
	metrics.CallbackOutcomes.WithLabelValues(metricsSource, "success").Inc()
	user := ""
	if id, idErr := tokens.Identity(); idErr == nil {
		user = id.Name()
		reqLog.Infow("Login completed", "user", user)
	} else {
		reqLog.Info("Login completed")
	}
	s.audit.Record(c.Request.Context(), s.auditEvent(c, audit.EventLoginCompleted, user))
	c.Redirect(http.StatusFound, "/"+dashboard.RouteDashboard)
}

func (s *Server) logout(c *gin.Context) {
	// read before Logout clears the tokens
	user := s.sessionInfo(c).Email
	if err := s.flow(c).Logout(c.Request.Context(), s.cfg.Auth); err != nil {
		apiresponses.RespondInternalError(c, "log out", err, system.GetReqLogger(c, s.log))
		return
	}
	providerRedirect := s.cfg.Auth.Validate() == nil
	metrics.Logouts.WithLabelValues(metricsSource, strconv.FormatBool(providerRedirect)).Inc()
	s.audit.Record(c.Request.Context(), s.auditEvent(c, audit.EventLogout, user).
		WithDetail("providerRedirect", providerRedirect))
}

func (s *Server) auditEvent(c *gin.Context, eventType audit.EventType, user string) *audit.Event {
	sid := c.GetString(system.SessionIDKey)
	if len(sid) > 8 {
		sid = sid[:8]
	}
	ev := audit.NewEvent(eventType, metricsSource, audit.Actor{
		User:      user,
		Session:   sid,
		SourceIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	ev.RequestID = c.GetString(system.RequestIDKey)
	return ev
}

// SessionResponse is returned by GET /api/session.
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
}

func (s *Server) sessionInfo(c *gin.Context) SessionResponse {
	store := s.credentials(c)
	ctx := c.Request.Context()
	resp := SessionResponse{Authenticated: store.IsAuthenticated(ctx)}
	if !resp.Authenticated {
		return resp
	}
	tokens, ok, err := store.Load(ctx)
	if err != nil || !ok {
		return resp
	}
	if id, err := tokens.Identity(); err == nil {
		resp.Email = id.Email
		c.Set("email", id.Email)
	}
	return resp
}

func (s *Server) getSession(c *gin.Context) {
	apiresponses.RespondOK(c, s.sessionInfo(c))
}

func (s *Server) getDashboard(c *gin.Context) {
	apiresponses.RespondOK(c, gin.H{
		"routes": dashboard.Routes,
		"data":   dashboard.Fixtures(),
	})
}

// FrontendConfig is the public part of the identity provider settings.
type FrontendConfig struct {
	CognitoDomain string `json:"cognitoDomain"`
	ClientID      string `json:"clientId"`
	RedirectURI   string `json:"redirectUri"`
	APIBaseURL    string `json:"apiBaseUrl,omitempty"`
}

func (s *Server) getConfig(c *gin.Context) {
	apiresponses.RespondOK(c, FrontendConfig{
		CognitoDomain: s.cfg.Auth.CognitoDomain,
		ClientID:      s.cfg.Auth.ClientID,
		RedirectURI:   s.cfg.Auth.RedirectURI,
		APIBaseURL:    s.cfg.Auth.APIBaseURL,
	})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
}

func (s *Server) page(c *gin.Context) {
	info := s.sessionInfo(c)
	route := dashboard.ResolveRoute(c.Param("route"))
	metrics.DashboardViews.WithLabelValues(route.ID, strconv.FormatBool(info.Authenticated)).Inc()
	s.renderPage(c, http.StatusOK, dashboard.NewPage(route.ID, info.Authenticated, info.Email))
}

func (s *Server) notFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || !wantsHTML(c) {
		apiresponses.RespondNotFound(c, "path", c.Request.URL.Path)
		return
	}
	c.Redirect(http.StatusFound, "/"+dashboard.RouteDashboard)
}

func (s *Server) renderPage(c *gin.Context, status int, p dashboard.Page) {
	var buf bytes.Buffer
	if err := dashboard.Render(&buf, p); err != nil {
		apiresponses.RespondInternalError(c, "render page", err, system.GetReqLogger(c, s.log))
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// respondFlowError renders a failed login step as an HTML page, or as JSON for
// clients that ask for it.
func (s *Server) respondFlowError(c *gin.Context, err error) {
	reqLog := system.GetReqLogger(c, s.log)
	if !wantsHTML(c) {
		apiresponses.RespondAuthError(c, err, reqLog)
		return
	}
	status, code := apiresponses.ClassifyAuthError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		reqLog.Errorw("Login flow failed", "error", err)
		msg = "internal error"
	} else {
		reqLog.Warnw("Login flow failed", "code", code, "error", err)
	}
	p := dashboard.NewPage(dashboard.RouteDashboard, false, "")
	p.Error = msg
	s.renderPage(c, status, p)
}

func wantsHTML(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEHTML
}
