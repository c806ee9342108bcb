package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Password string `json:"password"`
}

// Login exchanges the tool password for a session ID. Attempts are
// rate-limited per client IP to slow down guessing.
func (s *Server) Login(c *gin.Context) {
	if !s.loginLimiter.Allow(c.ClientIP()) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"error":   "Too many login attempts. Try again shortly.",
		})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !verifyToolPassword(req.Password, s.cfg.ToolPassword) {
		s.log.Warn("login rejected", zap.String("client_ip", c.ClientIP()))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid password",
		})
		return
	}

	sess := s.sessions.Create()
	s.log.Info("operator logged in", zap.Int("active_sessions", s.sessions.Count()))
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"sessionId": sess.ID,
	})
}

// VerifySession reports whether the presented session ID is still valid,
// so the UI can restore state after a reload.
func (s *Server) VerifySession(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(HeaderSessionID))
	if !s.sessions.Exists(id) {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SessionRequired gates the API on a known session ID.
func (s *Server) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderSessionID))
		if !s.sessions.Exists(id) {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}
