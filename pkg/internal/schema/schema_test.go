package schema_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/atichat/workfolio/pkg/internal/schema"
)

// TestFirstNonEmpty 测试候选值按顺序取第一个非空值.
func TestFirstNonEmpty(t *testing.T) {
	cases := []struct {
		name   string
		values []string
		want   string
	}{
		{"first wins", []string{"a", "b"}, "a"},
		{"skips empty", []string{"", "b"}, "b"},
		{"skips blank", []string{"   ", "b"}, "b"},
		{"all empty", []string{"", "  ", ""}, ""},
		{"no candidates", nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := schema.FirstNonEmpty(tc.values...); got != tc.want {
				t.Errorf("FirstNonEmpty(%v) = %q, want %q", tc.values, got, tc.want)
			}
		})
	}
}

// TestIsUnknownColumn 测试各驱动"列不存在"错误的识别.
func TestIsUnknownColumn(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pg undefined column", &pgconn.PgError{Code: "42703", Message: `column "avatarurl" of relation "profiles" does not exist`}, true},
		{"pg other", &pgconn.PgError{Code: "23505"}, false},
		{"mysql bad field", &mysql.MySQLError{Number: 1054, Message: "Unknown column 'avatarurl' in 'field list'"}, true},
		{"mysql other", &mysql.MySQLError{Number: 1062}, false},
		{"sqlite no such column", errors.New("SQL logic error: no such column: avatarurl (1)"), true},
		{"sqlite insert drift", errors.New("table profiles has no column named avater_url"), true},
		{"wrapped pg", fmt.Errorf("update profile: %w", &pgconn.PgError{Code: "42703"}), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := schema.IsUnknownColumn(tc.err); got != tc.want {
				t.Errorf("IsUnknownColumn(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

// TestIsDuplicateKey 测试唯一键冲突错误的识别.
func TestIsDuplicateKey(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicated", gorm.ErrDuplicatedKey, true},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"mysql dup entry", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ml' for key 'tags.name'"}, true},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: tags.name (2067)"), true},
		{"wrapped mysql", fmt.Errorf("insert tag: %w", &mysql.MySQLError{Number: 1062}), true},
		{"unrelated", errors.New("deadlock detected"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := schema.IsDuplicateKey(tc.err); got != tc.want {
				t.Errorf("IsDuplicateKey(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
