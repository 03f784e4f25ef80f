package model

import (
	"time"
)

// Media 作品图片登记行.
// FileRef 存对象存储引用（bucket 内对象键）；展示时按需签名.
// 同一作品按 created_at、id 排序，首行即缩略图.
type Media struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	WorkID   string `gorm:"size:26;index"      json:"work_id"`
	FileRef  string `gorm:"size:1024"          json:"file_ref"`
	MimeType string `gorm:"size:128"           json:"mime_type"`
	SizeMB   int    `gorm:"column:size_mb"     json:"size_mb"`
	AltText  string `gorm:"size:512"           json:"alt_text"`

	CreatedAt time.Time `json:"created_at"`
}
