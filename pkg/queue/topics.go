// Package queue 定义消息主题常量与通配模式，供发布/订阅使用.
package queue

// 主题命名规范：wf.<域>.<动作>[.<状态>]，尽量稳定且向后兼容.
// 域：profile(用户档案)、work(作品)、media(作品图片)、tag(标签)、object(对象存储)
// 动作：reconciled/created/updated/deleted/stored/accessed 等

const (
	// 用户档案领域.
	TopicProfileReconciled      = "wf.profile.reconciled"       // 登录对账完成（用户与档案已补齐）
	TopicProfileReconcileFailed = "wf.profile.reconcile.failed" // 对账失败（尽力而为，不阻断登录）
	TopicProfileUpdated         = "wf.profile.updated"          // 档案被用户主动更新

	// 作品领域.
	TopicWorkCreated   = "wf.work.created"   // 作品创建完成（含标签与图片处理结果）
	TopicWorkUpdated   = "wf.work.updated"   // 作品元数据更新
	TopicWorkDeleted   = "wf.work.deleted"   // 作品删除
	TopicWorkPublished = "wf.work.published" // 草稿转公开

	// 媒体领域.
	TopicMediaStored      = "wf.media.stored"       // 图片写入对象存储并登记
	TopicMediaStoreFailed = "wf.media.store.failed" // 单张图片处理失败（作品本体仍保留）

	// 标签领域.
	TopicTagCreated = "wf.tag.created" // 新标签首次出现

	// 对象存储领域.
	TopicObjectAccessed = "wf.object.accessed" // 对象被签名访问（用于热点统计）
)

// 主题分组，用于批量操作或权限控制.
var (
	// 用户档案相关主题集合.
	ProfileTopics = []string{
		TopicProfileReconciled, TopicProfileReconcileFailed, TopicProfileUpdated,
	}

	// 作品相关主题集合.
	WorkTopics = []string{
		TopicWorkCreated, TopicWorkUpdated, TopicWorkDeleted, TopicWorkPublished,
	}

	// 媒体相关主题集合.
	MediaTopics = []string{
		TopicMediaStored, TopicMediaStoreFailed,
	}

	// 标签相关主题集合.
	TagTopics = []string{
		TopicTagCreated,
	}
)
