package api

import (
	"net/http"

	"squashclub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BulletinHandler 得奖纪录、活动公告、比赛信息
type BulletinHandler struct {
	svc    *service.BulletinService
	logger *logrus.Logger
}

func NewBulletinHandler(svc *service.BulletinService, logger *logrus.Logger) *BulletinHandler {
	return &BulletinHandler{svc: svc, logger: logger}
}

// Awards GET /api/awards
func (h *BulletinHandler) Awards(c *gin.Context) {
	s := currentSession(c)
	c.JSON(http.StatusOK, gin.H{"awards": h.svc.Awards(c.Request.Context(), s.Cache, s.UserID, s.IsAdmin)})
}

// AddAward POST /api/awards
func (h *BulletinHandler) AddAward(c *gin.Context) {
	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	report, err := h.svc.AddAward(c.Request.Context(), currentSession(c).Cache, service.Award{
		StudentName: req.StudentName,
		Tournament:  req.Tournament,
		Prize:       req.Prize,
		Date:        req.Date,
		Note:        req.Note,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSaved(c, report, nil)
}

// DeleteAward DELETE /api/awards/:index
func (h *BulletinHandler) DeleteAward(c *gin.Context) {
	var uri indexURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBadRequest(c, err)
		return
	}
	report, err := h.svc.DeleteAward(c.Request.Context(), currentSession(c).Cache, uri.Index)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSaved(c, report, nil)
}

// Announcements GET /api/announcements
func (h *BulletinHandler) Announcements(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"announcements": h.svc.Announcements(c.Request.Context(), currentSession(c).Cache)})
}

// AddAnnouncement POST /api/announcements
func (h *BulletinHandler) AddAnnouncement(c *gin.Context) {
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	report, err := h.svc.AddAnnouncement(c.Request.Context(), currentSession(c).Cache, req.Title, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSaved(c, report, nil)
}

// DeleteAnnouncement DELETE /api/announcements/:index
func (h *BulletinHandler) DeleteAnnouncement(c *gin.Context) {
	var uri indexURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBadRequest(c, err)
		return
	}
	report, err := h.svc.DeleteAnnouncement(c.Request.Context(), currentSession(c).Cache, uri.Index)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSaved(c, report, nil)
}

// Tournaments GET /api/tournaments
func (h *BulletinHandler) Tournaments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tournaments": h.svc.Tournaments(c.Request.Context(), currentSession(c).Cache)})
}

// AddTournament POST /api/tournaments
func (h *BulletinHandler) AddTournament(c *gin.Context) {
	var req tournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	report, err := h.svc.AddTournament(c.Request.Context(), currentSession(c).Cache, service.Tournament{
		Name:     req.Name,
		Date:     req.Date,
		Deadline: req.Deadline,
		Link:     req.Link,
		Note:     req.Note,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSaved(c, report, nil)
}

// Budget 预算核算，不落库
// POST /api/budget
func (h *BulletinHandler) Budget(c *gin.Context) {
	in := service.DefaultBudgetInput()
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			respondBadRequest(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, service.CalculateBudget(in))
}
