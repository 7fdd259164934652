package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"squashclub/internal/identity"
	"squashclub/internal/interfaces"
	"squashclub/internal/model"
	"squashclub/internal/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SaveReport 一次保存的结果。Err 只是提示（远端失败），本地缓存已经更新
type SaveReport struct {
	Collection string `json:"collection"`
	Rows       int    `json:"rows"`
	Synced     bool   `json:"synced"`
	Skipped    bool   `json:"skipped"`
	Err        error  `json:"-"`
}

// Warning 给前端的提示文字，同步成功为空
func (r SaveReport) Warning() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s 同步失敗，資料只保存在本機: %v", r.Collection, r.Err)
	case r.Skipped:
		return fmt.Sprintf("%s 未連接雲端，資料只保存在本機", r.Collection)
	}
	return ""
}

// StoreStatus 文档库连接状态
type StoreStatus struct {
	Driver    string `json:"driver"`
	Connected bool   `json:"connected"`
	AppID     string `json:"app_id"`
}

// TableStore 整表读写：远端文档库 <-> 会话缓存。
// 远端的任何失败都在这里被吞掉并降级为本地数据，不会向上抛出
type TableStore struct {
	store  interfaces.DocumentStore
	appID  string
	logger *logrus.Logger
	locks  keyedMutex
}

// NewTableStore store 为 nil 时以纯本地模式运行
func NewTableStore(store interfaces.DocumentStore, appID string, logger *logrus.Logger) *TableStore {
	return &TableStore{store: store, appID: appID, logger: logger}
}

// Connected 是否连接了文档库
func (s *TableStore) Connected() bool { return s.store != nil }

// Status 连接状态
func (s *TableStore) Status() StoreStatus {
	st := StoreStatus{Driver: "none", Connected: s.Connected(), AppID: s.appID}
	if s.store != nil {
		st.Driver = s.store.Name()
	}
	return st
}

func (s *TableStore) path(collection string) string {
	return identity.CollectionPath(s.appID, collection)
}

// Load 读取集合。远端有数据时规范化后写入缓存并返回；
// 否则返回缓存中的表，再否则返回 defaults（同样写入缓存）。从不报错
func (s *TableStore) Load(ctx context.Context, cache *session.Cache, collection string, defaults *model.Table) *model.Table {
	if s.store != nil {
		docs, err := s.store.List(ctx, s.path(collection))
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"collection": collection,
				"store":      s.store.Name(),
			}).Warn("读取远端集合失败，使用本地数据")
		} else if len(docs) > 0 {
			if cache.Dirty(collection) {
				s.logger.WithField("collection", collection).Warn("远端数据覆盖了未同步的本地修改")
				cache.ClearDirty(collection)
			}
			t := tableFromDocuments(collection, docs)
			cache.Set(collection, t)
			return t
		}
	}

	if t, ok := cache.Get(collection); ok {
		return t
	}
	if defaults == nil {
		defaults = model.DefaultTable(collection)
	}
	t := defaults.Clone()
	cache.Set(collection, t)
	return t
}

// Cached 只读缓存，未缓存时从远端加载
func (s *TableStore) Cached(ctx context.Context, cache *session.Cache, collection string) *model.Table {
	if t, ok := cache.Get(collection); ok {
		return t
	}
	return s.Load(ctx, cache, collection, nil)
}

// Save 丢弃全空行、规范化列名，无条件写入缓存，再在有连接时整体替换远端集合
func (s *TableStore) Save(ctx context.Context, cache *session.Cache, collection string, t *model.Table) SaveReport {
	if t == nil {
		t = model.DefaultTable(collection)
	}
	t = t.Clone()
	identity.NormalizeColumns(t)
	t.Filter(func(r model.Row) bool { return !r.IsBlank() })

	cache.Set(collection, t)
	report := SaveReport{Collection: collection, Rows: t.Len()}

	if s.store == nil {
		report.Skipped = true
		cache.MarkDirty(collection)
		return report
	}

	if err := s.store.Replace(ctx, s.path(collection), documentsFromTable(collection, t)); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"collection": collection,
			"store":      s.store.Name(),
			"rows":       t.Len(),
		}).Warn("同步远端集合失败，本地缓存已更新")
		report.Err = err
		cache.MarkDirty(collection)
		return report
	}

	report.Synced = true
	cache.ClearDirty(collection)
	s.logger.WithFields(logrus.Fields{
		"collection": collection,
		"rows":       t.Len(),
	}).Info("集合已同步至云端")
	return report
}

// Update 在集合锁内完成 重新读取 -> 修改 -> 保存。
// 缓存中有未同步的修改时直接在缓存上修改，保存时一并推送到远端。
// fn 返回错误时不保存，缓存保持读取后的状态
func (s *TableStore) Update(ctx context.Context, cache *session.Cache, collection string, fn func(t *model.Table) error) (SaveReport, error) {
	unlock := s.locks.Lock(collection)
	defer unlock()

	var t *model.Table
	if cache.Dirty(collection) {
		t, _ = cache.Get(collection)
	}
	if t == nil {
		t = s.Load(ctx, cache, collection, nil)
	}
	if err := fn(t); err != nil {
		return SaveReport{Collection: collection}, err
	}
	return s.Save(ctx, cache, collection, t), nil
}

// Replace 整表替换（导入），同样持有集合锁
func (s *TableStore) Replace(ctx context.Context, cache *session.Cache, collection string, t *model.Table) SaveReport {
	unlock := s.locks.Lock(collection)
	defer unlock()
	return s.Save(ctx, cache, collection, t)
}

// LoadAll 登录后并发预加载所有集合
func (s *TableStore) LoadAll(ctx context.Context, cache *session.Cache) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, c := range model.Collections() {
		collection := c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.Load(ctx, cache, collection, nil)
			return nil
		})
	}
	return g.Wait()
}

// GetDocument 读取单篇文档（管理员设置等非表格数据）
func (s *TableStore) GetDocument(ctx context.Context, collection, key string) (model.Document, bool, error) {
	if s.store == nil {
		return model.Document{}, false, model.ErrStoreUnavailable
	}
	return s.store.Get(ctx, s.path(collection), key)
}

// PutDocument 写入单篇文档
func (s *TableStore) PutDocument(ctx context.Context, collection string, doc model.Document) error {
	if s.store == nil {
		return model.ErrStoreUnavailable
	}
	return s.store.Put(ctx, s.path(collection), doc)
}

// tableFromDocuments 文档转表格：列名规范化，schema 列在前，其余列按名称排序
func tableFromDocuments(collection string, docs []model.Document) *model.Table {
	t := &model.Table{Rows: make([]model.Row, 0, len(docs))}
	present := make(map[string]bool)
	for _, d := range docs {
		r := make(model.Row, len(d.Fields))
		for k, v := range d.Fields {
			r[k] = model.NormalizeScalar(v)
		}
		t.Rows = append(t.Rows, r)
	}
	identity.NormalizeColumns(t)

	schema, _ := model.SchemaFor(collection)
	for _, c := range schema.FillOnLoad {
		for _, r := range t.Rows {
			if _, ok := r[c]; !ok {
				r[c] = ""
			}
		}
	}
	for _, r := range t.Rows {
		for k := range r {
			present[k] = true
		}
	}

	cols := make([]string, 0, len(present))
	for _, c := range schema.Columns {
		if present[c] {
			cols = append(cols, c)
			delete(present, c)
		}
	}
	rest := make([]string, 0, len(present))
	for c := range present {
		rest = append(rest, c)
	}
	sort.Strings(rest)
	t.Columns = append(cols, rest...)
	return t
}

// documentsFromTable 行转文档，键由 identity 推导，同一次保存内重复的键加后缀
func documentsFromTable(collection string, t *model.Table) []model.Document {
	keys := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		keys[i] = identity.DeriveKey(collection, r)
	}
	keys = identity.UniqueKeys(keys)

	docs := make([]model.Document, len(t.Rows))
	for i, r := range t.Rows {
		fields := make(map[string]any, len(r))
		for k, v := range r {
			fields[k] = cleanValue(v)
		}
		docs[i] = model.Document{Key: keys[i], Fields: fields}
	}
	return docs
}

// cleanValue NaN/Inf 无法写入文档库，按空值处理
func cleanValue(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return model.NormalizeScalar(v)
}

// keyedMutex 每个集合一把锁，进程内所有会话共享
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Lock 加锁并返回解锁函数
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
