package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"squashclub/internal/model"
	"squashclub/internal/service"
	"squashclub/internal/sheet"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SyncHandler 集合查看、重新同步与整表导入
type SyncHandler struct {
	tables  *service.TableStore
	imports *service.ImportService
	logger  *logrus.Logger
}

func NewSyncHandler(tables *service.TableStore, imports *service.ImportService, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{tables: tables, imports: imports, logger: logger}
}

// StatusHandler 文档库连接状态
// @Router /api/status [get]
func (h *SyncHandler) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.tables.Status())
}

// TableHandler 查看集合当前内容（优先缓存）
// @Param collection path string true "集合名称（schedules/class_players）"
// @Router /api/collections/{collection} [get]
func (h *SyncHandler) TableHandler(c *gin.Context) {
	t, err := h.imports.Table(c.Request.Context(), currentSession(c).Cache, c.Param("collection"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": t.Columns, "rows": t.Rows})
}

// SchedulesHandler 只读查看训练日程表（所有登录用户）
// @Router /api/schedules [get]
func (h *SyncHandler) SchedulesHandler(c *gin.Context) {
	t, err := h.imports.Table(c.Request.Context(), currentSession(c).Cache, model.CollectionSchedules)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": t.Columns, "rows": t.Rows})
}

// ReloadHandler 忽略缓存重新从云端读取
// @Router /api/collections/{collection}/reload [post]
func (h *SyncHandler) ReloadHandler(c *gin.Context) {
	collection := c.Param("collection")
	t, err := h.imports.Reload(c.Request.Context(), currentSession(c).Cache, collection)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%s 已重新同步", collection),
		"rows":    t.Len(),
	})
}

// ImportHandler 上传 CSV/XLSX（表单字段 file）或提供下载链接（表单字段 url）整体替换集合
// @Router /api/collections/{collection}/import [post]
func (h *SyncHandler) ImportHandler(c *gin.Context) {
	collection := c.Param("collection")
	if !service.Importable(collection) {
		respondError(c, h.logger, fmt.Errorf("%w: %s", model.ErrUnknownCollection, collection))
		return
	}
	cache := currentSession(c).Cache

	if rawURL := strings.TrimSpace(c.PostForm("url")); rawURL != "" {
		report, err := h.imports.ImportURL(c.Request.Context(), cache, collection, rawURL)
		if err != nil {
			h.logger.WithError(err).WithField("collection", collection).Warn("从链接导入失败")
			respondError(c, h.logger, err)
			return
		}
		respondSaved(c, report, nil)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, errors.New("缺少 file 或 url"))
		return
	}
	f, err := sheet.FormatOf(fh.Filename)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	src, err := fh.Open()
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("读取上传文件失败: %w", err))
		return
	}
	defer func() {
		if err := src.Close(); err != nil {
			h.logger.Errorf("关闭上传文件失败: %v", err)
		}
	}()

	report, err := h.imports.Import(c.Request.Context(), cache, collection, f, src)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSaved(c, report, nil)
}
