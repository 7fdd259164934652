package memory

import (
	"context"
	"errors"
	"testing"

	"squashclub/internal/adapter"
	"squashclub/internal/config"
	"squashclub/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coll = "artifacts/test/public/data/rankings"

func TestReplaceAndList_KeepsWriteOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Replace(ctx, coll, []model.Document{
		{Key: "b", Fields: map[string]any{"姓名": "B"}},
		{Key: "a", Fields: map[string]any{"姓名": "A"}},
	}))

	docs, err := s.List(ctx, coll)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].Key)
	assert.Equal(t, "a", docs[1].Key)

	// 返回的是副本
	docs[0].Fields["姓名"] = "changed"
	again, _ := s.List(ctx, coll)
	assert.Equal(t, "B", again[0].Fields["姓名"])
}

func TestReplace_DuplicateKeyLeavesCollectionUntouched(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Replace(ctx, coll, []model.Document{{Key: "a"}}))
	require.Error(t, s.Replace(ctx, coll, []model.Document{{Key: "x"}, {Key: "x"}}))

	docs, _ := s.List(ctx, coll)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].Key)
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, ok, err := s.Get(ctx, "admin_settings", "config")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "admin_settings", model.Document{Key: "config", Fields: map[string]any{"password": "1"}}))
	require.NoError(t, s.Put(ctx, "admin_settings", model.Document{Key: "config", Fields: map[string]any{"password": "2"}}))
	doc, ok, err := s.Get(ctx, "admin_settings", "config")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", doc.Fields["password"])
}

func TestSetUnavailable(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.SetUnavailable(true)

	_, err := s.List(ctx, coll)
	assert.True(t, errors.Is(err, model.ErrStoreUnavailable))
	assert.True(t, errors.Is(s.Replace(ctx, coll, nil), model.ErrStoreUnavailable))

	s.SetUnavailable(false)
	_, err = s.List(ctx, coll)
	assert.NoError(t, err)
}

func TestRegisteredInFactoryRegistry(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: driverName}}
	store, err := adapter.Open(cfg, logrus.New())
	require.NoError(t, err)
	assert.Equal(t, driverName, store.Name())
	assert.Contains(t, adapter.ListFactories(), driverName)
}
