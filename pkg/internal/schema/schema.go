// Package schema 提供跨数据库的结构漂移容错工具.
//
// 历史部署之间列名存在漂移（如头像列 avatar_url/avatarurl/avater_url、档案主键
// user_id/id）。写入路径按候选列顺序尝试，读取路径取第一个非空候选值；
// 列缺失与唯一键冲突通过各驱动的结构化错误识别，而不是匹配任意人类可读消息.
package schema

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	// PostgreSQL SQLSTATE.
	pgUndefinedColumn = "42703"
	pgUniqueViolation = "23505"

	// MySQL 错误号.
	mysqlBadFieldError = 1054
	mysqlDupEntry      = 1062
)

// FirstNonEmpty 返回候选值中第一个非空白的值，全空返回空字符串.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}

// IsUnknownColumn 判断错误是否表示"列不存在"，用于列回退重试.
func IsUnknownColumn(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedColumn
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlBadFieldError
	}

	// SQLite 无结构化错误码可取，驱动消息格式固定.
	msg := err.Error()

	return strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "has no column named")
}

// IsDuplicateKey 判断错误是否表示唯一键/主键冲突，用于容忍并发写入竞态.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDupEntry
	}

	msg := err.Error()

	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
