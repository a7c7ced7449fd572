package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/session"
	"github.com/vyrodovalexey/statportal/internal/util"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login authenticates against the statistics API and starts a fresh session.
// The session id always rotates on login.
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, util.NewValidationError("Corps de requête invalide."))
		return
	}
	verr := util.NewValidationError("Veuillez saisir votre email et votre mot de passe.")
	if strings.TrimSpace(req.Email) == "" {
		verr.AddField("email", "required")
	}
	if req.Password == "" {
		verr.AddField("password", "required")
	}
	if verr.HasErrors() {
		s.respondError(c, verr)
		return
	}

	ctx := c.Request.Context()
	resp, err := s.api.Login(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if old := sessionFrom(c); old != nil && old.ID() != "" {
		if err := old.Clear(ctx); err != nil {
			s.logger.WithContext(ctx).Warn("failed to clear previous session",
				observability.Error(err))
		}
	}
	h := session.NewHandle(s.sessions, session.NewID())
	if err := h.Login(ctx, resp); err != nil {
		s.respondError(c, err)
		return
	}
	s.setSessionCookie(c, h.ID())

	s.logger.WithContext(ctx).Info("user logged in",
		observability.Int("userID", resp.User.ID),
		observability.Bool("canImport", resp.User.CanImport()))
	c.JSON(http.StatusOK, h.Info(ctx))
}

func (s *Server) logout(c *gin.Context) {
	if h := sessionFrom(c); h != nil && h.ID() != "" {
		if err := h.Clear(c.Request.Context()); err != nil {
			s.logger.WithContext(c.Request.Context()).Warn("failed to clear session",
				observability.Error(err))
		}
	}
	s.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) sessionInfo(c *gin.Context) {
	h := sessionFrom(c)
	if h == nil {
		c.JSON(http.StatusOK, session.Info{})
		return
	}
	c.JSON(http.StatusOK, h.Info(c.Request.Context()))
}
