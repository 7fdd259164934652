package api

import (
	"errors"
	"net/http"

	"squashclub/internal/model"
	"squashclub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusOf 领域错误 -> HTTP 状态码。文档库故障不会走到这里（只在 warning 中出现）
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrStudentNotFound),
		errors.Is(err, model.ErrIndexOutOfRange),
		errors.Is(err, model.ErrClassNotScheduled):
		return http.StatusNotFound
	case errors.Is(err, model.ErrUnknownCollection),
		errors.Is(err, model.ErrUnsupportedFormat),
		errors.Is(err, model.ErrInvalidSheet),
		errors.Is(err, model.ErrUnknownBadge),
		errors.Is(err, model.ErrRosterEmpty):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithField("path", c.FullPath()).Error("请求处理失败")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
}

// respondSaved 写操作统一返回 synced / warning，extra 中的字段一并返回
func respondSaved(c *gin.Context, report service.SaveReport, extra gin.H) {
	body := gin.H{"synced": report.Synced, "rows": report.Rows}
	if w := report.Warning(); w != "" {
		body["warning"] = w
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}
