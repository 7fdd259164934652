package service

import (
	"context"
	"fmt"
	"strings"

	"squashclub/internal/identity"
	"squashclub/internal/model"
	"squashclub/internal/session"

	"github.com/sirupsen/logrus"
)

const (
	presentSep = ", "

	MarkPresent  = "✅"
	MarkAbsent   = "✘"
	MarkNoRecord = "-"
)

// PlayerMark 点名表中的一名学生
type PlayerMark struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

// AttendanceSheet 某班某日的点名表
type AttendanceSheet struct {
	Class    string       `json:"class"`
	Date     string       `json:"date"`
	Players  []PlayerMark `json:"players"`
	Recorded bool         `json:"recorded"`
	Recorder string       `json:"recorder,omitempty"`
}

type AttendanceService struct {
	tables *TableStore
	logger *logrus.Logger
}

func NewAttendanceService(tables *TableStore, logger *logrus.Logger) *AttendanceService {
	return &AttendanceService{tables: tables, logger: logger}
}

// Classes 日程表中的班别，按首次出现顺序
func (s *AttendanceService) Classes(ctx context.Context, cache *session.Cache) []string {
	schedules := s.tables.Cached(ctx, cache, model.CollectionSchedules)
	seen := make(map[string]bool)
	var out []string
	for _, r := range schedules.Rows {
		c := identity.Field(r, model.ColClass)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Dates 某班的上课日期（日程表 具體日期 列，逗号分隔）
func (s *AttendanceService) Dates(ctx context.Context, cache *session.Cache, class string) ([]string, error) {
	schedules := s.tables.Cached(ctx, cache, model.CollectionSchedules)
	class = identity.Normalize(class)
	for _, r := range schedules.Rows {
		if identity.Field(r, model.ColClass) != class {
			continue
		}
		var dates []string
		for _, d := range strings.Split(r.Str(model.ColDateList), ",") {
			if d = identity.Normalize(d); d != "" {
				dates = append(dates, d)
			}
		}
		return dates, nil
	}
	return nil, fmt.Errorf("%w: %s", model.ErrClassNotScheduled, class)
}

// Players 某班名单中的学生姓名（去重，保持名单顺序）
func (s *AttendanceService) Players(ctx context.Context, cache *session.Cache, class string) []string {
	roster := s.tables.Cached(ctx, cache, model.CollectionClassPlayers)
	class = identity.Normalize(class)
	seen := make(map[string]bool)
	var out []string
	for _, r := range roster.Rows {
		if identity.Field(r, model.ColClass) != class {
			continue
		}
		name := identity.Field(r, model.ColName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Sheet 点名表：班级名单 + 已有记录中的出席状态
func (s *AttendanceService) Sheet(ctx context.Context, cache *session.Cache, class, date string) (*AttendanceSheet, error) {
	if _, err := s.Dates(ctx, cache, class); err != nil {
		return nil, err
	}
	key := identity.NaturalKey{First: identity.Normalize(class), Second: identity.Normalize(date)}
	sheet := &AttendanceSheet{Class: key.First, Date: key.Second}

	present := map[string]bool{}
	records := s.tables.Cached(ctx, cache, model.CollectionAttendance)
	if rec, ok := findAttendance(records, key); ok {
		sheet.Recorded = true
		sheet.Recorder = rec.StrOr(model.ColRecorder, "系統")
		for _, n := range splitPresent(rec) {
			present[n] = true
		}
	}
	for _, name := range s.Players(ctx, cache, class) {
		sheet.Players = append(sheet.Players, PlayerMark{Name: name, Present: present[name]})
	}
	return sheet, nil
}

// Upsert 保存点名：同一 班級+日期 只保留一条记录，新记录整体替换旧记录
func (s *AttendanceService) Upsert(ctx context.Context, cache *session.Cache, class, date string, present []string, recorder string) (SaveReport, error) {
	key := identity.NaturalKey{First: identity.Normalize(class), Second: identity.Normalize(date)}
	names := uniqueNames(present)

	report, err := s.tables.Update(ctx, cache, model.CollectionAttendance, func(t *model.Table) error {
		t.Filter(func(r model.Row) bool { return identity.AttendanceKey(r) != key })
		t.Append(model.Row{
			model.ColClass:        key.First,
			model.ColDate:         key.Second,
			model.ColPresentCount: int64(len(names)),
			model.ColPresentList:  strings.Join(names, presentSep),
			model.ColRecorder:     recorder,
		})
		return nil
	})
	if err == nil {
		s.logger.WithFields(logrus.Fields{
			"class":   key.First,
			"date":    key.Second,
			"present": len(names),
		}).Info("点名已保存")
	}
	return report, err
}

// Report 考勤总表：行为学生，列为上课日期，值为 ✅ / ✘ / -
func (s *AttendanceService) Report(ctx context.Context, cache *session.Cache, class string) (*model.Table, error) {
	dates, err := s.Dates(ctx, cache, class)
	if err != nil {
		return nil, err
	}
	class = identity.Normalize(class)

	byDate := make(map[string]map[string]bool)
	records := s.tables.Cached(ctx, cache, model.CollectionAttendance)
	for _, r := range records.Rows {
		k := identity.AttendanceKey(r)
		if k.First != class {
			continue
		}
		if _, done := byDate[k.Second]; done {
			continue
		}
		present := make(map[string]bool)
		for _, n := range splitPresent(r) {
			present[n] = true
		}
		byDate[k.Second] = present
	}

	out := model.NewTable(append([]string{model.ColStudentName}, dates...)...)
	for _, name := range s.Players(ctx, cache, class) {
		row := model.Row{model.ColStudentName: name}
		for _, d := range dates {
			switch present, ok := byDate[d]; {
			case !ok:
				row[d] = MarkNoRecord
			case present[name]:
				row[d] = MarkPresent
			default:
				row[d] = MarkAbsent
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// ReportFilename 考勤总表下载文件名
func ReportFilename(class string) string {
	return identity.SanitizeKey(identity.Normalize(class)) + "_attendance_report.csv"
}

func findAttendance(t *model.Table, key identity.NaturalKey) (model.Row, bool) {
	for _, r := range t.Rows {
		if identity.AttendanceKey(r) == key {
			return r, true
		}
	}
	return nil, false
}

func splitPresent(r model.Row) []string {
	raw := r.Str(model.ColPresentList)
	if raw == "" {
		return nil
	}
	var out []string
	for _, n := range strings.Split(raw, presentSep) {
		if n = identity.Normalize(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = identity.Normalize(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
