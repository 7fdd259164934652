// Package memory 进程内文档库，用于测试和本地开发
package memory

import (
	"context"
	"fmt"
	"sync"

	"squashclub/internal/adapter"
	"squashclub/internal/config"
	"squashclub/internal/interfaces"
	"squashclub/internal/model"

	"github.com/sirupsen/logrus"
)

const driverName = "memory"

func init() {
	adapter.Register(driverName, func(_ *config.Config, _ *logrus.Logger) (interfaces.DocumentStore, error) {
		return New(), nil
	})
}

// Store 以集合路径为键的内存文档库，保持写入顺序
type Store struct {
	mu          sync.RWMutex
	collections map[string][]model.Document
	unavailable bool
}

func New() *Store {
	return &Store{collections: make(map[string][]model.Document)}
}

// SetUnavailable 模拟文档库不可达，之后所有读写都返回 ErrStoreUnavailable
func (s *Store) SetUnavailable(v bool) {
	s.mu.Lock()
	s.unavailable = v
	s.mu.Unlock()
}

func (s *Store) Name() string { return driverName }

func (s *Store) List(ctx context.Context, collection string) ([]model.Document, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.collections[collection]
	out := make([]model.Document, len(docs))
	for i, d := range docs {
		out[i] = cloneDocument(d)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, collection, key string) (model.Document, bool, error) {
	if err := s.check(ctx); err != nil {
		return model.Document{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.collections[collection] {
		if d.Key == key {
			return cloneDocument(d), true, nil
		}
	}
	return model.Document{}, false, nil
}

func (s *Store) Put(ctx context.Context, collection string, doc model.Document) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collections[collection]
	for i := range docs {
		if docs[i].Key == doc.Key {
			docs[i] = cloneDocument(doc)
			return nil
		}
	}
	s.collections[collection] = append(docs, cloneDocument(doc))
	return nil
}

// Replace 在一把锁内整体替换，读者看不到空集合
func (s *Store) Replace(ctx context.Context, collection string, docs []model.Document) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	seen := make(map[string]bool, len(docs))
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if seen[d.Key] {
			return fmt.Errorf("文档键重复: %s", d.Key)
		}
		seen[d.Key] = true
		out = append(out, cloneDocument(d))
	}
	s.mu.Lock()
	s.collections[collection] = out
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.unavailable {
		return model.ErrStoreUnavailable
	}
	return nil
}

func cloneDocument(d model.Document) model.Document {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	return model.Document{Key: d.Key, Fields: fields}
}
