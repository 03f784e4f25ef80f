package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// ObjectRef 标识对象存储中的一个对象.
type ObjectRef struct {
	Bucket      string `json:"bucket"`
	ObjectKey   string `json:"object_key"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// -------------------------- 用户档案领域 --------------------------

// ProfileReconciledPayload 登录对账完成.
type ProfileReconciledPayload struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email,omitempty"`
	Outcome string `json:"outcome"` // updated / inserted / skipped
}

// ProfileReconcileFailedPayload 对账失败（登录仍成功）.
type ProfileReconcileFailedPayload struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// ProfileUpdatedPayload 档案被用户主动更新.
type ProfileUpdatedPayload struct {
	UserID string   `json:"user_id"`
	Fields []string `json:"fields,omitempty"`
}

// -------------------------- 作品领域 --------------------------

// WorkCreatedPayload 作品创建完成.
type WorkCreatedPayload struct {
	WorkID     string   `json:"work_id"`
	UserID     string   `json:"user_id"`
	Title      string   `json:"title"`
	Visibility string   `json:"visibility"`
	Tags       []string `json:"tags,omitempty"`
	MediaCount int      `json:"media_count,omitempty"`
}

// WorkUpdatedPayload 作品元数据更新.
type WorkUpdatedPayload struct {
	WorkID string   `json:"work_id"`
	UserID string   `json:"user_id"`
	Fields []string `json:"fields,omitempty"`
}

// WorkDeletedPayload 作品删除.
type WorkDeletedPayload struct {
	WorkID string `json:"work_id"`
	UserID string `json:"user_id"`
}

// -------------------------- 媒体领域 --------------------------

// MediaStoredPayload 图片写入对象存储并在数据库登记.
type MediaStoredPayload struct {
	MediaID  string    `json:"media_id"`
	WorkID   string    `json:"work_id"`
	Object   ObjectRef `json:"object"`
	Position int       `json:"position"`
}

// MediaStoreFailedPayload 单张图片处理失败.
type MediaStoreFailedPayload struct {
	WorkID   string `json:"work_id"`
	Position int    `json:"position"`
	Error    string `json:"error"`
}

// -------------------------- 标签领域 --------------------------

// TagCreatedPayload 新标签首次出现.
type TagCreatedPayload struct {
	TagID string `json:"tag_id"`
	Name  string `json:"name"`
}

// -------------------------- 对象存储领域 --------------------------

// ObjectAccessedPayload 对象被签名访问.
type ObjectAccessedPayload struct {
	Object ObjectRef `json:"object"`
	UserID string    `json:"user_id,omitempty"`
}
