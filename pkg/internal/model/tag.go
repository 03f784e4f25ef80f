package model

// Tag 标签目录，name 全局唯一.
type Tag struct {
	ID   string `gorm:"primaryKey;size:36"       json:"id"`
	Name string `gorm:"size:64;uniqueIndex"      json:"name"`
}
