package api

import (
	"net/http"

	"squashclub/internal/config"
	"squashclub/internal/service"
	"squashclub/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NewRouter 组装服务与路由。tables 为本地模式时所有写操作只落在会话缓存
func NewRouter(cfg *config.Config, tables *service.TableStore, manager *session.Manager, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(logger.WriterLevel(logrus.DebugLevel)), gin.Recovery())
	registerValidators()

	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	secret := cfg.Session.Secret
	if secret == "" {
		// 重启后旧 cookie 全部失效
		secret = uuid.NewString() + uuid.NewString()
		logger.Warn("未配置 session.secret，使用随机密钥")
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.IdleTimeout.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.Session.CookieName, store), withSession(manager))

	if cfg.Server.Pprof {
		pprof.Register(r)
	}

	authHandler := NewAuthHandler(service.NewAuthService(tables, cfg.Admin.DefaultPassword, logger), tables, manager, logger)
	rankingHandler := NewRankingHandler(service.NewRankingService(tables, logger), logger)
	attendanceHandler := NewAttendanceHandler(service.NewAttendanceService(tables, logger), logger)
	bulletinHandler := NewBulletinHandler(service.NewBulletinService(tables, logger), logger)
	syncHandler := NewSyncHandler(tables, service.NewImportService(tables, cfg.Import, logger), logger)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")
	apiGroup.POST("/login/admin", authHandler.LoginAdmin)
	apiGroup.POST("/login/student", authHandler.LoginStudent)
	apiGroup.POST("/logout", authHandler.Logout)
	apiGroup.GET("/status", syncHandler.StatusHandler)

	// 学生/家长与管理员都可访问
	member := apiGroup.Group("", requireLogin())
	member.GET("/me", authHandler.Me)
	member.GET("/rankings", rankingHandler.List)
	member.GET("/awards", bulletinHandler.Awards)
	member.GET("/announcements", bulletinHandler.Announcements)
	member.GET("/tournaments", bulletinHandler.Tournaments)
	member.GET("/schedules", syncHandler.SchedulesHandler)
	// 学生只读查看点名表，保存与总表仅限管理员
	member.GET("/attendance/classes", attendanceHandler.Classes)
	member.GET("/attendance/dates", attendanceHandler.Dates)
	member.GET("/attendance/sheet", attendanceHandler.Sheet)

	admin := apiGroup.Group("", requireAdmin())
	admin.PUT("/admin/password", authHandler.ChangePassword)

	admin.POST("/rankings/sync-roster", rankingHandler.SyncRoster)
	admin.POST("/rankings/badges", rankingHandler.AwardBadge)
	admin.POST("/rankings/adjust", rankingHandler.Adjust)
	admin.GET("/rankings/export", rankingHandler.Export)

	admin.PUT("/attendance/sheet", attendanceHandler.Save)
	admin.GET("/attendance/report", attendanceHandler.Report)

	admin.POST("/awards", bulletinHandler.AddAward)
	admin.DELETE("/awards/:index", bulletinHandler.DeleteAward)
	admin.POST("/announcements", bulletinHandler.AddAnnouncement)
	admin.DELETE("/announcements/:index", bulletinHandler.DeleteAnnouncement)
	admin.POST("/tournaments", bulletinHandler.AddTournament)
	admin.POST("/budget", bulletinHandler.Budget)

	admin.GET("/collections/:collection", syncHandler.TableHandler)
	admin.POST("/collections/:collection/reload", syncHandler.ReloadHandler)
	admin.POST("/collections/:collection/import", syncHandler.ImportHandler)

	return r
}
