package repository

import (
	"context"
	"errors"
	"fmt"

	"squashclub/internal/interfaces"
	"squashclub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) interfaces.DocumentRepository {
	return &DocumentRepository{db: db}
}

// ListDocuments 按写入顺序读取集合内全部文档
func (r *DocumentRepository) ListDocuments(ctx context.Context, collectionPath string) ([]*model.DocumentRecord, error) {
	var recs []*model.DocumentRecord
	if err := r.db.WithContext(ctx).
		Where("collection_path = ?", collectionPath).
		Order("position ASC, id ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// GetDocument 读取单篇文档，不存在返回 (nil, nil)
func (r *DocumentRepository) GetDocument(ctx context.Context, collectionPath, key string) (*model.DocumentRecord, error) {
	var rec model.DocumentRecord
	err := r.db.WithContext(ctx).
		Where("collection_path = ? AND doc_key = ?", collectionPath, key).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertDocument 按 (collection_path, doc_key) 覆盖写入
func (r *DocumentRepository) UpsertDocument(ctx context.Context, rec *model.DocumentRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection_path"}, {Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"fields", "position", "updated_at"}),
	}).Create(rec).Error
}

// ReplaceCollection 事务内删除集合全部文档并写入新文档，读者不会看到空集合
func (r *DocumentRepository) ReplaceCollection(ctx context.Context, collectionPath string, recs []*model.DocumentRecord) error {
	// 开启事务
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	// 1. 删除旧文档
	if err := tx.Where("collection_path = ?", collectionPath).Delete(&model.DocumentRecord{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("删除旧文档失败: %w, collection: %s", err, collectionPath)
	}

	// 2. 写入新文档
	for i := range recs {
		recs[i].CollectionPath = collectionPath
		recs[i].Position = i
		if err := tx.Create(recs[i]).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("写入文档失败: %w, key: %s", err, recs[i].DocKey)
		}
	}

	// 提交事务
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}
