package model

import (
	"time"
)

// 作品状态.
const (
	WorkStatusDraft     = "draft"
	WorkStatusPublished = "published"
)

// Work 作品模型，ID 为 ULID 字符串.
type Work struct {
	ID          string `gorm:"primaryKey;size:26"      json:"id"`
	AuthorID    string `gorm:"size:255;index"          json:"author_id"`
	Title       string `gorm:"size:200"                json:"title"`
	Description string `gorm:"type:text"               json:"description"`
	Status      string `gorm:"size:16;index"           json:"status"`
	Views       int64  `gorm:"default:0"               json:"views"`
	Likes       int64  `gorm:"default:0"               json:"likes"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// WorkTag 作品与标签的链接表，联合主键，无额外负载.
type WorkTag struct {
	WorkID string `gorm:"primaryKey;size:26"  json:"work_id"`
	TagID  string `gorm:"primaryKey;size:36"  json:"tag_id"`
}

// TableName 链接表使用复数下划线命名.
func (WorkTag) TableName() string {
	return "work_tags"
}
