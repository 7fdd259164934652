package service

import (
	"context"
	"testing"

	"squashclub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankingRow(grade, class, name string, points any, badge string) model.Row {
	return model.Row{model.ColGrade: grade, model.ColClass: class, model.ColName: name, model.ColPoints: points, model.ColBadge: badge}
}

func TestRankedTable_DedupKeepsFirstAndSortsStably(t *testing.T) {
	src := tableOf(model.RankingColumns,
		rankingRow("P4", "4A", "陳大文", int64(100), "無"),
		rankingRow("P5", "5B", "李小龍", "300", "金章"),
		rankingRow(" P4", "4C", "陳大文 ", int64(999), "無"),
		rankingRow("P6", "6A", "王小明", "abc", "無"),
		rankingRow("P3", "3A", "張三", 100.0, "銅章"),
	)

	ranked := RankedTable(src)
	require.Equal(t, 4, ranked.Len())
	names := make([]string, 0, ranked.Len())
	for _, r := range ranked.Rows {
		names = append(names, r.Str(model.ColName))
	}
	// 同分保持原有顺序，重复的 陳大文 只保留第一行
	assert.Equal(t, []string{"李小龍", "陳大文", "張三", "王小明"}, names)
	assert.Equal(t, "4A", ranked.Rows[1][model.ColClass])
	assert.Equal(t, int64(0), ranked.Rows[3][model.ColPoints])

	// 原表不受影响
	assert.Equal(t, 5, src.Len())
}

func TestStandings_RankAndHonour(t *testing.T) {
	src := tableOf([]string{model.ColName, model.ColPoints},
		model.Row{model.ColName: "A", model.ColPoints: int64(50)},
		model.Row{model.ColName: "B", model.ColPoints: int64(450)},
	)
	src.Rows[1][model.ColBadge] = "白金章"

	st := Standings(RankedTable(src))
	require.Len(t, st, 2)
	assert.Equal(t, Standing{Rank: 1, Grade: "-", Class: "-", Name: "B", Points: 450, Badge: "白金章", Honour: "💎 白金章"}, st[0])
	assert.Equal(t, 2, st[1].Rank)
	assert.Equal(t, "-", st[1].Honour)
}

func TestSyncRoster_SecondRunAddsNothing(t *testing.T) {
	ctx := context.Background()
	tables, mem := newTestTables(t)
	svc := NewRankingService(tables, quietLogger())
	cache := newCache()

	seedRemote(t, mem, model.CollectionClassPlayers,
		model.Document{Key: "4A_陳大文", Fields: map[string]any{"班級": "4A", "姓名": "陳大文", "年級": "P4"}},
		model.Document{Key: "4A_李小龍", Fields: map[string]any{"班級": "4A", "姓名": "李小龍 ", "年級": "P4"}},
		model.Document{Key: "5B_王小明", Fields: map[string]any{"班級": "5B", "姓名": "王小明"}},
	)
	seedRemote(t, mem, model.CollectionRankings,
		model.Document{Key: "4A_陳大文", Fields: map[string]any{"年級": "P4", "班級": "4A", "姓名": "陳大文", "積分": int64(180), "章別": "無"}},
	)

	added, report, err := svc.SyncRoster(ctx, cache)
	require.NoError(t, err)
	assert.True(t, report.Synced)
	assert.Equal(t, 2, added)

	added, _, err = svc.SyncRoster(ctx, cache)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	got := svc.Table(ctx, cache)
	require.Equal(t, 3, got.Len())
	assert.Equal(t, int64(180), got.Rows[0].Int(model.ColPoints))
	newRow := got.Rows[2]
	assert.Equal(t, "王小明", newRow[model.ColName])
	assert.Equal(t, "-", newRow[model.ColGrade])
	assert.Equal(t, model.DefaultRankingPoints, newRow.Int(model.ColPoints))
	assert.Equal(t, model.BadgeNone, newRow[model.ColBadge])
}

func TestSyncRoster_EmptyGradeMatchesEmptyGrade(t *testing.T) {
	ctx := context.Background()
	tables, mem := newTestTables(t)
	svc := NewRankingService(tables, quietLogger())
	cache := newCache()

	seedRemote(t, mem, model.CollectionClassPlayers,
		model.Document{Key: "4A_陳大文", Fields: map[string]any{"班級": "4A", "姓名": "陳大文", "年級": ""}},
	)
	seedRemote(t, mem, model.CollectionRankings,
		model.Document{Key: "4A_陳大文", Fields: map[string]any{"年級": "", "班級": "4A", "姓名": "陳大文", "積分": int64(150), "章別": "無"}},
	)

	added, _, err := svc.SyncRoster(ctx, cache)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	got := svc.Table(ctx, cache)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, int64(150), got.Rows[0].Int(model.ColPoints))
}

func TestSyncRoster_EmptyRoster(t *testing.T) {
	tables, _ := newTestTables(t)
	svc := NewRankingService(tables, quietLogger())
	_, _, err := svc.SyncRoster(context.Background(), newCache())
	assert.ErrorIs(t, err, model.ErrRosterEmpty)
}

func TestAwardBadge_GoldAddsTwoHundred(t *testing.T) {
	ctx := context.Background()
	tables, mem := newTestTables(t)
	svc := NewRankingService(tables, quietLogger())
	cache := newCache()
	seedRemote(t, mem, model.CollectionRankings,
		model.Document{Key: "4A_陳大文", Fields: map[string]any{"年級": "P4", "班級": "4A", "姓名": "陳大文", "積分": "150", "章別": "無"}},
	)

	_, err := svc.AwardBadge(ctx, cache, BadgeAward{Name: " 陳大文", Grade: "P4", Class: "4B", Badge: "金章"})
	require.NoError(t, err)
	r := svc.Table(ctx, cache).Rows[0]
	assert.Equal(t, int64(350), r.Int(model.ColPoints))
	assert.Equal(t, "金章", r[model.ColBadge])
	assert.Equal(t, "4B", r[model.ColClass])

	// 找不到学生时新建，基础 100 分
	_, err = svc.AwardBadge(ctx, cache, BadgeAward{Name: "李小龍", Badge: "金章"})
	require.NoError(t, err)
	tbl := svc.Table(ctx, cache)
	require.Equal(t, 2, tbl.Len())
	created := tbl.Rows[1]
	assert.Equal(t, int64(300), created.Int(model.ColPoints))
	assert.Equal(t, "-", created[model.ColGrade])
	assert.Equal(t, "-", created[model.ColClass])
	assert.Equal(t, "金章", created[model.ColBadge])
}

func TestAwardBadge_NonNumericPointsCountAsZero(t *testing.T) {
	ctx := context.Background()
	tables, _ := newTestTables(t)
	svc := NewRankingService(tables, quietLogger())
	cache := newCache()
	svc.Import(ctx, cache, tableOf(model.RankingColumns, rankingRow("P4", "4A", "陳大文", "n/a", "無")))

	_, err := svc.AwardBadge(ctx, cache, BadgeAward{Name: "陳大文", Grade: "P4", Badge: "銅章"})
	require.NoError(t, err)
	assert.Equal(t, int64(50), svc.Table(ctx, cache).Rows[0].Int(model.ColPoints))

	_, err = svc.AwardBadge(ctx, cache, BadgeAward{Name: "陳大文", Grade: "P4", Badge: "木章"})
	assert.ErrorIs(t, err, model.ErrUnknownBadge)
}

func TestAdjust(t *testing.T) {
	ctx := context.Background()
	tables, mem := newTestTables(t)
	svc := NewRankingService(tables, quietLogger())
	cache := newCache()
	svc.Import(ctx, cache, tableOf(model.RankingColumns, rankingRow("P4", "4A", "陳大文", int64(100), "無")))

	adj, report, err := svc.Adjust(ctx, cache, "陳大文", "P4", -30)
	require.NoError(t, err)
	assert.True(t, report.Synced)
	assert.Equal(t, Adjustment{Name: "陳大文", Grade: "P4", Before: 100, After: 70}, adj)

	before := remoteDocs(t, mem, model.CollectionRankings)
	_, _, err = svc.Adjust(ctx, cache, "陳大文", "P5", 10)
	assert.ErrorIs(t, err, model.ErrStudentNotFound)
	assert.Equal(t, before, remoteDocs(t, mem, model.CollectionRankings))
}

func TestUpdate_UnsyncedEditSurvivesStoreRecovery(t *testing.T) {
	ctx := context.Background()
	tables, mem := newTestTables(t)
	svc := NewRankingService(tables, quietLogger())
	cache := newCache()
	seedRemote(t, mem, model.CollectionRankings,
		model.Document{Key: "P4_陳大文", Fields: map[string]any{"年級": "P4", "班級": "4A", "姓名": "陳大文", "積分": int64(100), "章別": "無"}},
	)

	require.Equal(t, 1, svc.Table(ctx, cache).Len())

	mem.SetUnavailable(true)
	report, err := svc.AwardBadge(ctx, cache, BadgeAward{Name: "陳大文", Grade: "P4", Badge: "金章"})
	require.NoError(t, err)
	assert.False(t, report.Synced)
	assert.NotEmpty(t, report.Warning())
	assert.True(t, cache.Dirty(model.CollectionRankings))

	mem.SetUnavailable(false)
	adj, report, err := svc.Adjust(ctx, cache, "陳大文", "P4", 10)
	require.NoError(t, err)
	assert.True(t, report.Synced)
	assert.Equal(t, int64(300), adj.Before)
	assert.Equal(t, int64(310), adj.After)
	assert.False(t, cache.Dirty(model.CollectionRankings))

	// 之前只保存在本机的章别随这次保存一并同步到远端
	docs := remoteDocs(t, mem, model.CollectionRankings)
	require.Len(t, docs, 1)
	assert.Equal(t, "金章", docs[0].Fields[model.ColBadge])
	assert.Equal(t, int64(310), model.ToInt(docs[0].Fields[model.ColPoints]))
}
