package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/session"
	"github.com/vyrodovalexey/statportal/internal/upstream"
)

const sessionKey = "session"

// sessionMiddleware binds the request to the session named by the cookie and makes
// its tokens available to upstream calls. Requests without a cookie get an
// empty session.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(s.cfg.Session.CookieName)
		h := session.NewHandle(s.sessions, id)
		c.Set(sessionKey, h)

		ctx := upstream.WithCredentials(c.Request.Context(), h)
		if id != "" {
			ctx = observability.ContextWithSessionID(ctx, id)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *session.Handle {
	if v, ok := c.Get(sessionKey); ok {
		if h, ok := v.(*session.Handle); ok {
			return h
		}
	}
	return nil
}

func (s *Server) setSessionCookie(c *gin.Context, id string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.cfg.Session.TTL.Duration().Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
