package types

import "time"

// WorkImageItem 创建作品时附带的单张图片.
type WorkImageItem struct {
	// DataURL data:image/png;base64,... 形式的图片内容
	DataURL string `binding:"required" json:"data_url" rule:"required"`
	AltText string `json:"alt_text,omitempty"`
}

// CreateWorkRequest 创建作品请求.
type CreateWorkRequest struct {
	Title       string          `binding:"required,max=200"                json:"title"            rule:"required,max=200"`
	Description string          `json:"description,omitempty"`
	Status      string          `binding:"omitempty,oneof=draft published" json:"status,omitempty" rule:"omitempty,oneof=draft published"`
	TagIDs      []string        `json:"tag_ids,omitempty"`  // 已存在标签的 id
	NewTags     []string        `json:"new_tags,omitempty"` // 新标签名，按需创建
	Images      []WorkImageItem `json:"images,omitempty"`
}

// TagView 标签视图.
type TagView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MediaView 图片视图，URL 为签名后的访问地址（签名失败时为原始引用）.
type MediaView struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type,omitempty"`
	SizeMB    int       `json:"size_mb,omitempty"`
	AltText   string    `json:"alt_text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkView 作品聚合视图：作品本体 + 缩略图 + 标签；详情页附完整图片列表.
type WorkView struct {
	ID          string     `json:"id"`
	AuthorID    string     `json:"author_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Views       int64      `json:"views"`
	Likes       int64      `json:"likes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	Thumbnail *MediaView  `json:"thumbnail,omitempty"`
	Media     []MediaView `json:"media,omitempty"`
	Tags      []TagView   `json:"tags"`
}

// CreateWorkResponse 创建作品响应，只返回持久化的作品行.
type CreateWorkResponse struct {
	ID          string     `json:"id"`
	AuthorID    string     `json:"author_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ListWorksResponse 作品列表响应.
type ListWorksResponse struct {
	Works []WorkView `json:"works"`
	Total int        `json:"total"`
}

// SearchTagsResponse 标签搜索响应.
type SearchTagsResponse struct {
	Tags []TagView `json:"tags"`
}
