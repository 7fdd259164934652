// Package firestore Cloud Firestore 文档库后端。
// Replace 优先在一个事务内完成；写入数超过事务上限时退化为 BulkWriter 先删后写，
// 期间并发读者可能看到不完整的集合
package firestore

import (
	"context"
	"errors"
	"fmt"

	"squashclub/internal/adapter"
	"squashclub/internal/config"
	"squashclub/internal/interfaces"
	"squashclub/internal/model"

	fs "cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	driverName = "firestore"
	// maxTxWrites 单个事务最多写入数
	maxTxWrites = 500
)

var errTooManyWrites = errors.New("写入数超过事务上限")

func init() {
	adapter.Register(driverName, func(cfg *config.Config, logger *logrus.Logger) (interfaces.DocumentStore, error) {
		return Open(context.Background(), cfg.Store.Firestore, logger)
	})
}

type Store struct {
	client *fs.Client
	logger *logrus.Logger
}

// Open 创建 Firestore 客户端。凭据优先级：credentials_json > credentials_file > 默认凭据
func Open(ctx context.Context, cfg config.FirestoreConfig, logger *logrus.Logger) (*Store, error) {
	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = fs.DetectProjectID
	}
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := fs.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: 创建Firestore客户端失败: %w", model.ErrStoreUnavailable, err)
	}
	logger.WithField("project_id", cfg.ProjectID).Info("Firestore客户端初始化成功")
	return &Store{client: client, logger: logger}, nil
}

func (s *Store) Name() string { return driverName }

func (s *Store) List(ctx context.Context, collection string) ([]model.Document, error) {
	iter := s.client.Collection(collection).Documents(ctx)
	defer iter.Stop()

	var docs []model.Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: 读取集合%s失败: %w", model.ErrStoreUnavailable, collection, err)
		}
		docs = append(docs, toDocument(snap))
	}
	return docs, nil
}

func (s *Store) Get(ctx context.Context, collection, key string) (model.Document, bool, error) {
	snap, err := s.client.Collection(collection).Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.Document{}, false, nil
	}
	if err != nil {
		return model.Document{}, false, fmt.Errorf("%w: 读取文档%s失败: %w", model.ErrStoreUnavailable, key, err)
	}
	return toDocument(snap), true, nil
}

func (s *Store) Put(ctx context.Context, collection string, doc model.Document) error {
	if _, err := s.client.Collection(collection).Doc(doc.Key).Set(ctx, doc.Fields); err != nil {
		return fmt.Errorf("%w: 写入文档%s失败: %w", model.ErrStoreUnavailable, doc.Key, err)
	}
	return nil
}

// Replace 整体替换集合内容。新旧键相同的文档直接 Set 覆盖，其余旧文档删除
func (s *Store) Replace(ctx context.Context, collection string, docs []model.Document) error {
	coll := s.client.Collection(collection)
	keep := make(map[string]bool, len(docs))
	for _, d := range docs {
		keep[d.Key] = true
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *fs.Transaction) error {
		// 事务内必须先读后写
		refs, err := tx.DocumentRefs(coll).GetAll()
		if err != nil {
			return err
		}
		var stale []*fs.DocumentRef
		for _, ref := range refs {
			if !keep[ref.ID] {
				stale = append(stale, ref)
			}
		}
		if len(stale)+len(docs) > maxTxWrites {
			return errTooManyWrites
		}
		for _, ref := range stale {
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}
		for _, d := range docs {
			if err := tx.Set(coll.Doc(d.Key), d.Fields); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errTooManyWrites) {
		s.logger.WithFields(logrus.Fields{
			"collection": collection,
			"docs":       len(docs),
		}).Warn("集合过大，改用非原子的先删后写")
		err = s.replaceBulk(ctx, coll, docs)
	}
	if err != nil {
		return fmt.Errorf("%w: 替换集合%s失败: %w", model.ErrStoreUnavailable, collection, err)
	}
	return nil
}

// replaceBulk 先删除全部旧文档再写入新文档，两步之间集合可能为空
func (s *Store) replaceBulk(ctx context.Context, coll *fs.CollectionRef, docs []model.Document) error {
	refs, err := coll.DocumentRefs(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("读取旧文档失败: %w", err)
	}

	bw := s.client.BulkWriter(ctx)
	var jobs []*fs.BulkWriterJob
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return fmt.Errorf("删除旧文档失败: %w", err)
		}
		jobs = append(jobs, job)
	}
	bw.Flush()
	for _, d := range docs {
		job, err := bw.Set(coll.Doc(d.Key), d.Fields)
		if err != nil {
			bw.End()
			return fmt.Errorf("写入文档%s失败: %w", d.Key, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error { return s.client.Close() }

func toDocument(snap *fs.DocumentSnapshot) model.Document {
	data := snap.Data()
	fields := make(map[string]any, len(data))
	for k, v := range data {
		fields[k] = model.NormalizeScalar(v)
	}
	return model.Document{Key: snap.Ref.ID, Fields: fields}
}
