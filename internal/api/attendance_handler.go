package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"squashclub/internal/model"
	"squashclub/internal/service"
	"squashclub/internal/sheet"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 日期可能含 "/"，班别和日期都走 query 参数
type AttendanceHandler struct {
	svc    *service.AttendanceService
	logger *logrus.Logger
}

func NewAttendanceHandler(svc *service.AttendanceService, logger *logrus.Logger) *AttendanceHandler {
	return &AttendanceHandler{svc: svc, logger: logger}
}

// Classes GET /api/attendance/classes
func (h *AttendanceHandler) Classes(c *gin.Context) {
	classes := h.svc.Classes(c.Request.Context(), currentSession(c).Cache)
	if classes == nil {
		classes = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

// Dates GET /api/attendance/dates?class=
func (h *AttendanceHandler) Dates(c *gin.Context) {
	var q attendanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, err)
		return
	}
	dates, err := h.svc.Dates(c.Request.Context(), currentSession(c).Cache, q.Class)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"class": q.Class, "dates": dates})
}

// Sheet GET /api/attendance/sheet?class=&date=
func (h *AttendanceHandler) Sheet(c *gin.Context) {
	var q attendanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, err)
		return
	}
	if q.Date == "" {
		respondBadRequest(c, errors.New("date 不能为空"))
		return
	}
	s, err := h.svc.Sheet(c.Request.Context(), currentSession(c).Cache, q.Class, q.Date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// Save 保存点名，同一 班級+日期 覆盖旧记录
// PUT /api/attendance/sheet {"class","date","present":[...]}
func (h *AttendanceHandler) Save(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	s := currentSession(c)
	report, err := h.svc.Upsert(c.Request.Context(), s.Cache, req.Class, req.Date, req.Present, s.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSaved(c, report, gin.H{"present": len(req.Present)})
}

// Report 考勤总表
// GET /api/attendance/report?class=&format=json|csv
func (h *AttendanceHandler) Report(c *gin.Context) {
	var q attendanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, err)
		return
	}
	t, err := h.svc.Report(c.Request.Context(), currentSession(c).Cache, q.Class)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		c.JSON(http.StatusOK, gin.H{"class": q.Class, "columns": t.Columns, "rows": t.Rows})
		return
	case string(sheet.FormatCSV):
	default:
		respondError(c, h.logger, fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, format))
		return
	}
	var buf bytes.Buffer
	if err := sheet.Encode(sheet.FormatCSV, &buf, t, ""); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, service.ReportFilename(q.Class)))
	c.Data(http.StatusOK, sheet.FormatCSV.ContentType(), buf.Bytes())
}
