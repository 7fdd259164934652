package api

import (
	"net/http"

	"squashclub/internal/service"
	"squashclub/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	auth     *service.AuthService
	tables   *service.TableStore
	sessions *session.Manager
	logger   *logrus.Logger
}

func NewAuthHandler(auth *service.AuthService, tables *service.TableStore, manager *session.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, tables: tables, sessions: manager, logger: logger}
}

// LoginAdmin 管理员登录
// POST /api/login/admin {"password": "..."}
func (h *AuthHandler) LoginAdmin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.auth.LoginAdmin(c.Request.Context(), req.Password); err != nil {
		h.logger.WithField("client_ip", c.ClientIP()).Warn("管理员密码错误")
		respondError(c, h.logger, err)
		return
	}
	h.start(c, service.AdminUserID, true)
}

// LoginStudent 学生/家长登录，ID 为 班别+学号
// POST /api/login/student {"class": "1A", "number": "1"}
func (h *AuthHandler) LoginStudent(c *gin.Context) {
	var req studentLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	userID, err := service.StudentID(req.Class, req.Number)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.start(c, userID, false)
}

// start 新建会话并预加载所有集合
func (h *AuthHandler) start(c *gin.Context, userID string, isAdmin bool) {
	cs := sessions.Default(c)
	if old, ok := cs.Get(sessionIDKey).(string); ok && old != "" {
		h.sessions.Delete(old)
	}

	s := h.sessions.Create(userID, isAdmin)
	if err := h.tables.LoadAll(c.Request.Context(), s.Cache); err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Warn("预加载集合失败")
	}

	cs.Set(sessionIDKey, s.ID)
	if err := cs.Save(); err != nil {
		h.sessions.Delete(s.ID)
		respondError(c, h.logger, err)
		return
	}
	h.logger.WithFields(logrus.Fields{"user_id": userID, "is_admin": isAdmin}).Info("用户登录")
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "is_admin": isAdmin})
}

// Logout 登出，丢弃会话缓存
// POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	cs := sessions.Default(c)
	if sid, ok := cs.Get(sessionIDKey).(string); ok {
		h.sessions.Delete(sid)
	}
	cs.Clear()
	cs.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = cs.Save()
	c.JSON(http.StatusOK, gin.H{"message": "已登出"})
}

// Me 当前登录身份
// GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	s := currentSession(c)
	c.JSON(http.StatusOK, gin.H{"user_id": s.UserID, "is_admin": s.IsAdmin})
}

// ChangePassword 修改管理员密码（需要连接文档库）
// PUT /api/admin/password {"password": "..."}
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.auth.SetAdminPassword(c.Request.Context(), req.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "密碼已更新"})
}
