package service

import (
	"context"
	"testing"
	"time"

	"squashclub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwards_SortedByDateAndOwnFlag(t *testing.T) {
	ctx := context.Background()
	tables, _ := newTestTables(t)
	cache := newCache()
	svc := NewBulletinService(tables, quietLogger())

	tables.Save(ctx, cache, model.CollectionClassPlayers, tableOf(nil,
		model.Row{model.ColClass: "1a", model.ColStudentNo: int64(1), model.ColName: "張小明"},
	))
	for _, a := range []Award{
		{StudentName: "李小龍", Tournament: "公開賽", Prize: "亞軍", Date: "2024-01-10"},
		{StudentName: "張小明", Tournament: "校際賽", Prize: "冠軍", Date: "2024-03-02"},
	} {
		_, err := svc.AddAward(ctx, cache, a)
		require.NoError(t, err)
	}

	list := svc.Awards(ctx, cache, "1A01", false)
	require.Len(t, list, 2)
	assert.Equal(t, "張小明", list[0].StudentName)
	assert.Equal(t, 1, list[0].Index)
	assert.True(t, list[0].Own)
	assert.False(t, list[1].Own)

	// 管理员不标记
	assert.False(t, svc.Awards(ctx, cache, AdminUserID, true)[0].Own)

	_, err := svc.DeleteAward(ctx, cache, list[0].Index)
	require.NoError(t, err)
	left := svc.Awards(ctx, cache, "", true)
	require.Len(t, left, 1)
	assert.Equal(t, "李小龍", left[0].StudentName)

	_, err = svc.DeleteAward(ctx, cache, 5)
	assert.ErrorIs(t, err, model.ErrIndexOutOfRange)
}

func TestAnnouncements_NewestFirst(t *testing.T) {
	ctx := context.Background()
	tables, mem := newTestTables(t)
	cache := newCache()
	svc := NewBulletinService(tables, quietLogger())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	_, err := svc.AddAnnouncement(ctx, cache, "集訓", "星期六早上")
	require.NoError(t, err)
	_, err = svc.AddAnnouncement(ctx, cache, "比賽", "請準時")
	require.NoError(t, err)

	list := svc.Announcements(ctx, cache)
	require.Len(t, list, 2)
	assert.Equal(t, Announcement{Index: 1, Title: "比賽", Content: "請準時", Date: "2024-05-01"}, list[0])
	assert.Equal(t, "集訓", list[1].Title)

	docs := remoteDocs(t, mem, model.CollectionAnnouncements)
	require.Len(t, docs, 2)
	assert.Equal(t, "2024-05-01_集訓", docs[0].Key)

	_, err = svc.DeleteAnnouncement(ctx, cache, 0)
	require.NoError(t, err)
	list = svc.Announcements(ctx, cache)
	require.Len(t, list, 1)
	assert.Equal(t, "比賽", list[0].Title)
}

func TestTournaments(t *testing.T) {
	ctx := context.Background()
	tables, mem := newTestTables(t)
	cache := newCache()
	svc := NewBulletinService(tables, quietLogger())

	_, err := svc.AddTournament(ctx, cache, Tournament{Name: "全港青少年壁球錦標賽", Date: "2024-07-01", Deadline: "2024-06-01", Link: "https://example.org"})
	require.NoError(t, err)

	list := svc.Tournaments(ctx, cache)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-06-01", list[0].Deadline)
	assert.Equal(t, "tm_全港青少年壁球錦標賽_2024-07-01", remoteDocs(t, mem, model.CollectionTournaments)[0].Key)
}
