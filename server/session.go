package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/session"
)

// sessionID returns the id carried by the session cookie. When create is set a missing
// or malformed id is replaced by a new one and the cookie is (re)issued.
func (s *Server) sessionID(c *gin.Context, create bool) string {
	id, err := c.Cookie(s.cookieName)
	if err == nil && session.ValidID(id) {
		return id
	}
	if !create {
		return ""
	}
	id = session.NewID()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, id, int(s.cookieMaxAge.Seconds()), "/", "", s.cookieSecure, true)
	return id
}

// activeContext returns the session's product context, nil when there is none
func (s *Server) activeContext(c *gin.Context) (*session.Context, error) {
	id := s.sessionID(c, false)
	if id == "" {
		return nil, nil
	}
	sc, err := s.sessions.Get(c.Request.Context(), id)
	if errors.Is(err, errdefs.ErrNotFound) {
		return nil, nil
	}
	return sc, err
}
