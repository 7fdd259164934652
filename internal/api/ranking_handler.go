package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"squashclub/internal/service"
	"squashclub/internal/sheet"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// exportSheetName 导出 xlsx 的工作表名
const exportSheetName = "積分榜"

type RankingHandler struct {
	svc    *service.RankingService
	logger *logrus.Logger
	now    func() time.Time
}

func NewRankingHandler(svc *service.RankingService, logger *logrus.Logger) *RankingHandler {
	return &RankingHandler{svc: svc, logger: logger, now: time.Now}
}

// List 排行榜（去重、按积分降序、名次从 1 开始）
// GET /api/rankings
func (h *RankingHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"standings": h.svc.Standings(c.Request.Context(), currentSession(c).Cache)})
}

// SyncRoster 从壁球班名单同步学生
// POST /api/rankings/sync-roster
func (h *RankingHandler) SyncRoster(c *gin.Context) {
	added, report, err := h.svc.SyncRoster(c.Request.Context(), currentSession(c).Cache)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSaved(c, report, gin.H{"added": added})
}

// AwardBadge 章别登记
// POST /api/rankings/badges {"name","grade","class","badge"}
func (h *RankingHandler) AwardBadge(c *gin.Context) {
	var req badgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	report, err := h.svc.AwardBadge(c.Request.Context(), currentSession(c).Cache, service.BadgeAward{
		Name: req.Name, Grade: req.Grade, Class: req.Class, Badge: req.Badge,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSaved(c, report, nil)
}

// Adjust 手动调整分数，找不到学生返回 404
// POST /api/rankings/adjust {"name","grade","delta"}
func (h *RankingHandler) Adjust(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	adj, report, err := h.svc.Adjust(c.Request.Context(), currentSession(c).Cache, req.Name, req.Grade, *req.Delta)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSaved(c, report, gin.H{"adjustment": adj})
}

// Export 导出排行榜
// GET /api/rankings/export?format=xlsx|csv
func (h *RankingHandler) Export(c *gin.Context) {
	f, err := sheet.FormatOf(c.DefaultQuery("format", string(sheet.FormatXLSX)))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var buf bytes.Buffer
	if err := sheet.Encode(f, &buf, h.svc.ExportTable(c.Request.Context(), currentSession(c).Cache), exportSheetName); err != nil {
		respondError(c, h.logger, err)
		return
	}
	filename := fmt.Sprintf("%s.%s", ExportBasename(h.now()), f)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, f.ContentType(), buf.Bytes())
}

// ExportBasename 导出文件名（不含扩展名）
func ExportBasename(now time.Time) string {
	return "squash_ranking_" + now.Format("20060102")
}
