package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishWorkCreated 发布 wf.work.created 事件。
// 作品创建管线完成后调用，通知下游（统计、缓存刷新等）。
// 可通过可选项 opts 注入 TraceID、Producer 等头部信息。
func PublishWorkCreated(pub message.Publisher, payload WorkCreatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicWorkCreated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicWorkCreated, msg)
}

// ParseWorkCreated 将 Watermill 消息解析为强类型 Envelope（WorkCreatedPayload）。
func ParseWorkCreated(msg *message.Message) (Message[WorkCreatedPayload], error) {
	return ParseWatermillMessage[WorkCreatedPayload](msg)
}

// PublishProfileReconciled 发布 wf.profile.reconciled 事件。
func PublishProfileReconciled(pub message.Publisher, payload ProfileReconciledPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicProfileReconciled, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicProfileReconciled, msg)
}

// ParseProfileReconciled 将 Watermill 消息解析为强类型 Envelope（ProfileReconciledPayload）。
func ParseProfileReconciled(msg *message.Message) (Message[ProfileReconciledPayload], error) {
	return ParseWatermillMessage[ProfileReconciledPayload](msg)
}

// PublishMediaStored 发布 wf.media.stored 事件。
func PublishMediaStored(pub message.Publisher, payload MediaStoredPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicMediaStored, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicMediaStored, msg)
}

// PublishTagCreated 发布 wf.tag.created 事件。
func PublishTagCreated(pub message.Publisher, payload TagCreatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicTagCreated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicTagCreated, msg)
}
