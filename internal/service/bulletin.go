package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"squashclub/internal/identity"
	"squashclub/internal/model"
	"squashclub/internal/session"

	"github.com/sirupsen/logrus"
)

// Award 学生得奖纪录
type Award struct {
	Index       int    `json:"index"`
	StudentName string `json:"student_name"`
	Tournament  string `json:"tournament"`
	Prize       string `json:"prize"`
	Date        string `json:"date"`
	Note        string `json:"note"`
	Own         bool   `json:"own"`
}

// Announcement 活动公告
type Announcement struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
}

// Tournament 比赛
type Tournament struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Deadline string `json:"deadline"`
	Link     string `json:"link"`
	Note     string `json:"note"`
}

// BulletinService 得奖纪录、公告、比赛。都是追加写入，按下标删除
type BulletinService struct {
	tables *TableStore
	logger *logrus.Logger
	now    func() time.Time
}

func NewBulletinService(tables *TableStore, logger *logrus.Logger) *BulletinService {
	return &BulletinService{tables: tables, logger: logger, now: time.Now}
}

// Awards 按日期从新到旧。Index 为在原表中的下标，用于删除；
// 学生登录时通过名单 班級+學號 找到本人姓名，标记本人的奖项
func (s *BulletinService) Awards(ctx context.Context, cache *session.Cache, userID string, isAdmin bool) []Award {
	t := s.tables.Cached(ctx, cache, model.CollectionAwards)
	own := ""
	if !isAdmin && userID != "" {
		own = s.studentName(ctx, cache, userID)
	}

	out := make([]Award, 0, t.Len())
	for i, r := range t.Rows {
		a := Award{
			Index:       i,
			StudentName: r.Str(model.ColStudentName),
			Tournament:  r.Str(model.ColTournament),
			Prize:       r.Str(model.ColPrize),
			Date:        r.Str(model.ColDate),
			Note:        r.Str(model.ColNote),
		}
		a.Own = own != "" && identity.Same(a.StudentName, own)
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// AddAward 新增得奖纪录
func (s *BulletinService) AddAward(ctx context.Context, cache *session.Cache, a Award) (SaveReport, error) {
	return s.tables.Update(ctx, cache, model.CollectionAwards, func(t *model.Table) error {
		t.Append(model.Row{
			model.ColStudentName: identity.Normalize(a.StudentName),
			model.ColTournament:  identity.Normalize(a.Tournament),
			model.ColPrize:       identity.Normalize(a.Prize),
			model.ColDate:        identity.Normalize(a.Date),
			model.ColNote:        strings.TrimSpace(a.Note),
		})
		return nil
	})
}

// DeleteAward 按原表下标删除
func (s *BulletinService) DeleteAward(ctx context.Context, cache *session.Cache, index int) (SaveReport, error) {
	return s.tables.Update(ctx, cache, model.CollectionAwards, func(t *model.Table) error {
		return t.RemoveAt(index)
	})
}

// Announcements 最新发布的在前
func (s *BulletinService) Announcements(ctx context.Context, cache *session.Cache) []Announcement {
	t := s.tables.Cached(ctx, cache, model.CollectionAnnouncements)
	out := make([]Announcement, 0, t.Len())
	for i := t.Len() - 1; i >= 0; i-- {
		r := t.Rows[i]
		out = append(out, Announcement{
			Index:   i,
			Title:   r.Str(model.ColTitle),
			Content: r.Str(model.ColContent),
			Date:    r.Str(model.ColDate),
		})
	}
	return out
}

// AddAnnouncement 发布公告，日期为当天
func (s *BulletinService) AddAnnouncement(ctx context.Context, cache *session.Cache, title, content string) (SaveReport, error) {
	return s.tables.Update(ctx, cache, model.CollectionAnnouncements, func(t *model.Table) error {
		t.Append(model.Row{
			model.ColTitle:   identity.Normalize(title),
			model.ColContent: strings.TrimSpace(content),
			model.ColDate:    s.now().Format("2006-01-02"),
		})
		return nil
	})
}

// DeleteAnnouncement 按原表下标删除
func (s *BulletinService) DeleteAnnouncement(ctx context.Context, cache *session.Cache, index int) (SaveReport, error) {
	return s.tables.Update(ctx, cache, model.CollectionAnnouncements, func(t *model.Table) error {
		return t.RemoveAt(index)
	})
}

// Tournaments 比赛列表，保持录入顺序
func (s *BulletinService) Tournaments(ctx context.Context, cache *session.Cache) []Tournament {
	t := s.tables.Cached(ctx, cache, model.CollectionTournaments)
	out := make([]Tournament, 0, t.Len())
	for _, r := range t.Rows {
		out = append(out, Tournament{
			Name:     r.Str(model.ColTournament),
			Date:     r.Str(model.ColDate),
			Deadline: r.Str(model.ColDeadline),
			Link:     r.Str(model.ColLink),
			Note:     r.Str(model.ColNote),
		})
	}
	return out
}

// AddTournament 发布比赛
func (s *BulletinService) AddTournament(ctx context.Context, cache *session.Cache, tm Tournament) (SaveReport, error) {
	return s.tables.Update(ctx, cache, model.CollectionTournaments, func(t *model.Table) error {
		t.Append(model.Row{
			model.ColTournament: identity.Normalize(tm.Name),
			model.ColDate:       identity.Normalize(tm.Date),
			model.ColDeadline:   identity.Normalize(tm.Deadline),
			model.ColLink:       strings.TrimSpace(tm.Link),
			model.ColNote:       strings.TrimSpace(tm.Note),
		})
		return nil
	})
}

// studentName 名单中 班級(大写)+學號(补零到两位) 与登录 ID 相同的学生姓名
func (s *BulletinService) studentName(ctx context.Context, cache *session.Cache, userID string) string {
	roster := s.tables.Cached(ctx, cache, model.CollectionClassPlayers)
	if !roster.HasColumn(model.ColClass) || !roster.HasColumn(model.ColStudentNo) {
		return ""
	}
	for _, r := range roster.Rows {
		id := strings.ToUpper(r.Str(model.ColClass)) + ZeroPad(r.Str(model.ColStudentNo), 2)
		if id == userID {
			return r.Str(model.ColName)
		}
	}
	return ""
}
