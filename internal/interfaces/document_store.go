package interfaces

import (
	"context"

	"squashclub/internal/config"
	"squashclub/internal/model"

	"github.com/sirupsen/logrus"
)

// DocumentStore 所有文档库后端必须实现的核心接口。collection 为完整集合路径
// （artifacts/{appID}/public/data/{name}），由调用方通过 identity.CollectionPath 生成
type DocumentStore interface {
	// Name 后端名称
	Name() string
	// List 读取集合内全部文档
	List(ctx context.Context, collection string) ([]model.Document, error)
	// Get 读取单篇文档
	Get(ctx context.Context, collection, key string) (model.Document, bool, error)
	// Put 写入单篇文档（覆盖）
	Put(ctx context.Context, collection string, doc model.Document) error
	// Replace 删除集合全部文档后写入 docs
	Replace(ctx context.Context, collection string, docs []model.Document) error
	Close() error
}

// DocumentRepository 关系库文档表的通用操作接口
type DocumentRepository interface {
	ListDocuments(ctx context.Context, collectionPath string) ([]*model.DocumentRecord, error)
	GetDocument(ctx context.Context, collectionPath, key string) (*model.DocumentRecord, error)
	UpsertDocument(ctx context.Context, rec *model.DocumentRecord) error
	ReplaceCollection(ctx context.Context, collectionPath string, recs []*model.DocumentRecord) error
}

// Factory 文档库后端工厂函数签名
// 入参：全局配置、日志实例
// 出参：实现 DocumentStore 接口的后端实例
type Factory func(cfg *config.Config, logger *logrus.Logger) (DocumentStore, error)
