package api

import (
	"net/http"

	"squashclub/internal/model"
	"squashclub/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionIDKey  = "sid"
	ctxSessionKey = "squash_session"
)

// withSession 根据 cookie 中的会话 ID 取出会话上下文，找不到时不做处理
func withSession(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sid, ok := sessions.Default(c).Get(sessionIDKey).(string); ok && sid != "" {
			if s, found := manager.Get(sid); found {
				c.Set(ctxSessionKey, s)
			}
		}
		c.Next()
	}
}

// requireLogin 未登录返回 401
func requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentSession(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "請先登入系統"})
			return
		}
		c.Next()
	}
}

// requireAdmin 非管理员返回 403
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := currentSession(c)
		if s == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "請先登入系統"})
			return
		}
		if !s.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": model.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(ctxSessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
