package repository

import (
	"context"
	"path/filepath"
	"testing"

	"squashclub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// createTestDB 临时 sqlite 库，结构与 postgres 后端一致
func createTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "documents.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.DocumentRecord{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func record(key, fields string) *model.DocumentRecord {
	return &model.DocumentRecord{DocKey: key, Fields: datatypes.JSON(fields)}
}

func TestReplaceCollection_KeepsOrderAndScope(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(createTestDB(t))
	const coll = "artifacts/app/public/data/rankings"
	const other = "artifacts/app/public/data/tournaments"

	require.NoError(t, repo.ReplaceCollection(ctx, other, []*model.DocumentRecord{record("tm_x_y", `{"比賽名稱":"x"}`)}))
	require.NoError(t, repo.ReplaceCollection(ctx, coll, []*model.DocumentRecord{
		record("4B_李", `{"姓名":"李"}`),
		record("4A_陳", `{"姓名":"陳"}`),
	}))

	recs, err := repo.ListDocuments(ctx, coll)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "4B_李", recs[0].DocKey)
	assert.Equal(t, "4A_陳", recs[1].DocKey)

	// 第二次替换只保留新文档
	require.NoError(t, repo.ReplaceCollection(ctx, coll, []*model.DocumentRecord{record("4C_王", `{"姓名":"王"}`)}))
	recs, err = repo.ListDocuments(ctx, coll)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "4C_王", recs[0].DocKey)

	others, err := repo.ListDocuments(ctx, other)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestReplaceCollection_DuplicateKeyRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(createTestDB(t))
	const coll = "artifacts/app/public/data/rankings"

	require.NoError(t, repo.ReplaceCollection(ctx, coll, []*model.DocumentRecord{record("a", `{}`)}))
	err := repo.ReplaceCollection(ctx, coll, []*model.DocumentRecord{record("b", `{}`), record("b", `{}`)})
	require.Error(t, err)

	recs, err := repo.ListDocuments(ctx, coll)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].DocKey)
}

func TestUpsertAndGetDocument(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(createTestDB(t))
	const coll = "artifacts/app/public/data/admin_settings"

	rec, err := repo.GetDocument(ctx, coll, "config")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, repo.UpsertDocument(ctx, &model.DocumentRecord{CollectionPath: coll, DocKey: "config", Fields: datatypes.JSON(`{"password":"1234"}`)}))
	require.NoError(t, repo.UpsertDocument(ctx, &model.DocumentRecord{CollectionPath: coll, DocKey: "config", Fields: datatypes.JSON(`{"password":"5678"}`)}))

	rec, err = repo.GetDocument(ctx, coll, "config")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.JSONEq(t, `{"password":"5678"}`, string(rec.Fields))
}
