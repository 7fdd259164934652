package service

import (
	"context"
	"fmt"
	"sort"

	"squashclub/internal/identity"
	"squashclub/internal/model"
	"squashclub/internal/session"

	"github.com/sirupsen/logrus"
)

// Standing 排行榜上的一名学生
type Standing struct {
	Rank   int    `json:"rank"`
	Grade  string `json:"grade"`
	Class  string `json:"class"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
	Badge  string `json:"badge"`
	Honour string `json:"honour"`
}

// BadgeAward 章别登记
type BadgeAward struct {
	Name  string
	Grade string
	Class string
	Badge string
}

// Adjustment 手动调整分数的结果
type Adjustment struct {
	Name   string `json:"name"`
	Grade  string `json:"grade"`
	Before int64  `json:"before"`
	After  int64  `json:"after"`
}

type RankingService struct {
	tables *TableStore
	logger *logrus.Logger
}

func NewRankingService(tables *TableStore, logger *logrus.Logger) *RankingService {
	return &RankingService{tables: tables, logger: logger}
}

// Table 当前缓存的原始排行榜
func (s *RankingService) Table(ctx context.Context, cache *session.Cache) *model.Table {
	return s.tables.Cached(ctx, cache, model.CollectionRankings)
}

// Standings 去重、排序后的排行榜，名次从 1 开始
func (s *RankingService) Standings(ctx context.Context, cache *session.Cache) []Standing {
	return Standings(RankedTable(s.Table(ctx, cache)))
}

// ExportTable 导出用的表：与显示同样去重排序，保留原表全部列
func (s *RankingService) ExportTable(ctx context.Context, cache *session.Cache) *model.Table {
	return RankedTable(s.Table(ctx, cache))
}

// Import 用导入的表整体替换排行榜
func (s *RankingService) Import(ctx context.Context, cache *session.Cache, t *model.Table) SaveReport {
	return s.tables.Replace(ctx, cache, model.CollectionRankings, t)
}

// SyncRoster 把壁球班名单中未在排行榜上的学生加入排行榜（按 姓名+年級 判断），返回新增人数。
// 重复执行不会重复加入
func (s *RankingService) SyncRoster(ctx context.Context, cache *session.Cache) (int, SaveReport, error) {
	roster := s.tables.Load(ctx, cache, model.CollectionClassPlayers, nil)
	if roster.Empty() {
		return 0, SaveReport{Collection: model.CollectionRankings}, model.ErrRosterEmpty
	}

	added := 0
	report, err := s.tables.Update(ctx, cache, model.CollectionRankings, func(t *model.Table) error {
		ensureRankingColumns(t)
		for _, p := range roster.Rows {
			name := identity.Field(p, model.ColName)
			if name == "" {
				continue
			}
			// 名单没有 年級 列时记为 "-"；有该列时按去空白后的原值比较，空值也是有效值
			grade := "-"
			if p.Has(model.ColGrade) {
				grade = identity.Field(p, model.ColGrade)
			}
			if findStudent(t, name, grade) >= 0 {
				continue
			}
			t.Append(model.Row{
				model.ColGrade:  grade,
				model.ColClass:  identity.Field(p, model.ColClass),
				model.ColName:   name,
				model.ColPoints: model.DefaultRankingPoints,
				model.ColBadge:  model.BadgeNone,
			})
			added++
		}
		return nil
	})
	if err != nil {
		return 0, report, err
	}

	s.logger.WithFields(logrus.Fields{
		"added":  added,
		"roster": roster.Len(),
	}).Info("壁球班名单同步至排行榜完成")
	return added, report, nil
}

// AwardBadge 登记章别：找到学生则覆盖章别并加上章别积分，找不到则以 100 分为基础新建
func (s *RankingService) AwardBadge(ctx context.Context, cache *session.Cache, a BadgeAward) (SaveReport, error) {
	badge, ok := model.Badges[identity.Normalize(a.Badge)]
	if !ok || badge.Name == model.BadgeNone {
		return SaveReport{Collection: model.CollectionRankings}, fmt.Errorf("%w: %s", model.ErrUnknownBadge, a.Badge)
	}
	name, grade, class := identity.Normalize(a.Name), identity.Normalize(a.Grade), identity.Normalize(a.Class)

	return s.tables.Update(ctx, cache, model.CollectionRankings, func(t *model.Table) error {
		ensureRankingColumns(t)
		if idx := findStudent(t, name, grade); idx >= 0 {
			r := t.Rows[idx]
			r[model.ColBadge] = badge.Name
			r[model.ColPoints] = r.Int(model.ColPoints) + badge.Points
			if class != "" {
				r[model.ColClass] = class
			}
			return nil
		}
		t.Append(model.Row{
			model.ColGrade:  orDash(grade),
			model.ColClass:  orDash(class),
			model.ColName:   name,
			model.ColPoints: model.DefaultRankingPoints + badge.Points,
			model.ColBadge:  badge.Name,
		})
		return nil
	})
}

// Adjust 手动加减分，找不到学生返回 ErrStudentNotFound 且不做任何修改
func (s *RankingService) Adjust(ctx context.Context, cache *session.Cache, name, grade string, delta int64) (Adjustment, SaveReport, error) {
	adj := Adjustment{Name: identity.Normalize(name), Grade: identity.Normalize(grade)}
	report, err := s.tables.Update(ctx, cache, model.CollectionRankings, func(t *model.Table) error {
		ensureRankingColumns(t)
		idx := findStudent(t, adj.Name, adj.Grade)
		if idx < 0 {
			return model.ErrStudentNotFound
		}
		r := t.Rows[idx]
		adj.Before = r.Int(model.ColPoints)
		adj.After = adj.Before + delta
		r[model.ColPoints] = adj.After
		return nil
	})
	return adj, report, err
}

// RankedTable 显示/导出前的整理：补齐必备列（積分 为 0，其余为 "-"），
// 按 年級+姓名 去重保留首行，積分 转整数后按降序稳定排序
func RankedTable(src *model.Table) *model.Table {
	t := src.Clone()
	if t == nil {
		t = model.DefaultTable(model.CollectionRankings)
	}
	for _, col := range model.RankingColumns {
		if col == model.ColPoints {
			t.EnsureColumn(col, int64(0))
		} else {
			t.EnsureColumn(col, "-")
		}
	}
	for _, r := range t.Rows {
		r[model.ColName] = identity.Field(r, model.ColName)
		r[model.ColGrade] = identity.Field(r, model.ColGrade)
	}

	t.Rows = identity.DedupFirst(t.Rows, identity.RankingKey)
	for _, r := range t.Rows {
		r[model.ColPoints] = r.Int(model.ColPoints)
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].Int(model.ColPoints) > t.Rows[j].Int(model.ColPoints)
	})
	return t
}

// Standings 把整理后的表转成带名次和勋章文字的列表
func Standings(ranked *model.Table) []Standing {
	out := make([]Standing, 0, ranked.Len())
	for i, r := range ranked.Rows {
		badge := r.Str(model.ColBadge)
		out = append(out, Standing{
			Rank:   i + 1,
			Grade:  r.Str(model.ColGrade),
			Class:  r.Str(model.ColClass),
			Name:   r.Str(model.ColName),
			Points: r.Int(model.ColPoints),
			Badge:  badge,
			Honour: model.BadgeLabel(badge),
		})
	}
	return out
}

// ensureRankingColumns 修改前补齐必备列：積分 为 0，其余为 "無"
func ensureRankingColumns(t *model.Table) {
	for _, col := range model.RankingColumns {
		if col == model.ColPoints {
			t.EnsureColumn(col, int64(0))
		} else {
			t.EnsureColumn(col, model.BadgeNone)
		}
	}
}

// findStudent 按 姓名+年級 查找第一行，找不到返回 -1
func findStudent(t *model.Table, name, grade string) int {
	for i, r := range t.Rows {
		if identity.Field(r, model.ColName) == name && identity.Field(r, model.ColGrade) == grade {
			return i
		}
	}
	return -1
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
