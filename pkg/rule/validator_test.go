package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/atichat/workfolio/pkg/rule"
)

// workForm 模拟作品创建入参的校验规则.
type workForm struct {
	Title      string `rule:"required,max=200"`
	Visibility string `rule:"oneof=draft published"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	engine := rule.Engine()
	if engine == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试 ValidateStruct 对有效和无效结构体的验证.
func TestValidateStruct(t *testing.T) {
	valid := workForm{Title: "Desert Poster", Visibility: "draft"}

	err := rule.ValidateStruct(valid)
	if err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	// 缺少 Title
	missingTitle := workForm{Title: "", Visibility: "published"}

	err = rule.ValidateStruct(missingTitle)
	if err == nil {
		t.Error("Expected error for struct missing title, got nil")
	}

	// Visibility 非法
	badVisibility := workForm{Title: "Desert Poster", Visibility: "secret"}

	err = rule.ValidateStruct(badVisibility)
	if err == nil {
		t.Error("Expected error for invalid visibility, got nil")
	}
}

// TestErrors 测试 Errors 对验证错误的整理.
func TestErrors(t *testing.T) {
	err := rule.ValidateStruct(workForm{Title: "", Visibility: "secret"})
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	fields := rule.Errors(err)
	if len(fields) != 2 {
		t.Errorf("Expected 2 field errors, got %d: %v", len(fields), fields)
	}

	if fields["Title"] != "required" {
		t.Errorf("Expected Title error tag 'required', got %q", fields["Title"])
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	// 有效 email
	err := rule.ValidateVar("test@example.com", "required,email")
	if err != nil {
		t.Errorf("Expected no error for valid email, got %v", err)
	}

	// 无效 email
	err = rule.ValidateVar("invalid-email", "required,email")
	if err == nil {
		t.Error("Expected error for invalid email, got nil")
	}
}

// TestRegisterValidation 测试注册自定义验证.
func TestRegisterValidation(t *testing.T) {
	// 注册自定义验证：标签不允许前后空白
	err := rule.RegisterValidation("trimmed", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return len(str) > 0 && str[0] != ' ' && str[len(str)-1] != ' '
	})
	if err != nil {
		t.Fatalf("Failed to register validation: %v", err)
	}

	err = rule.ValidateVar("ml", "trimmed")
	if err != nil {
		t.Errorf("Expected no error for trimmed tag, got %v", err)
	}

	err = rule.ValidateVar(" ML ", "trimmed")
	if err == nil {
		t.Error("Expected error for padded tag, got nil")
	}
}

// TestRegisterAlias 测试注册别名.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("tag_name", "required,min=1,max=64")

	err := rule.ValidateVar("illustration", "tag_name")
	if err != nil {
		t.Errorf("Expected no error for valid string with alias, got %v", err)
	}

	err = rule.ValidateVar("", "tag_name")
	if err == nil {
		t.Error("Expected error for invalid string with alias, got nil")
	}
}
