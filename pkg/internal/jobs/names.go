package jobs

// 任务名称常量，便于统一管理与引用.
const (
	JobTagCatalogRefresh = "tags.catalog.refresh"
	JobMediaOrphanAudit  = "media.orphan.audit"
)

// Cron 表达式常量.
const (
	CronTagCatalogRefresh = "*/5 * * * *"
	CronMediaOrphanAudit  = "40 3 * * *"
)
