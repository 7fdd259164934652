package model

import (
	"time"

	"gorm.io/datatypes"
)

// Document 文档库中的一篇文档：键 + 扁平字段
type Document struct {
	Key    string
	Fields map[string]any
}

// DocumentRecord 关系库后端的文档表，一行即一篇文档
type DocumentRecord struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	CollectionPath string         `gorm:"column:collection_path;type:varchar(256);not null;uniqueIndex:uk_collection_doc;index;comment:集合路径"`
	DocKey         string         `gorm:"column:doc_key;type:varchar(512);not null;uniqueIndex:uk_collection_doc;comment:文档键"`
	Position       int            `gorm:"column:position;type:int;not null;default:0;comment:写入顺序"`
	Fields         datatypes.JSON `gorm:"column:fields;type:jsonb;not null;comment:文档字段"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

func (DocumentRecord) TableName() string { return "documents" }
