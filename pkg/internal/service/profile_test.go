package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/atichat/workfolio/pkg/internal/types"
)

func TestResolveDisplayName(t *testing.T) {
	cases := []struct {
		name  string
		ident types.Identity
		want  string
	}{
		{"full_name wins", types.Identity{Email: "a@b.c", Metadata: map[string]string{"full_name": "Ada L", "name": "ada"}}, "Ada L"},
		{"name fallback", types.Identity{Email: "a@b.c", Metadata: map[string]string{"name": "ada"}}, "ada"},
		{"email local part", types.Identity{Email: "ada.lovelace@example.com"}, "ada.lovelace"},
		{"last resort", types.Identity{}, "User"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveDisplayName(tc.ident); got != tc.want {
				t.Errorf("resolveDisplayName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReconcileInsertsProfile(t *testing.T) {
	ps := newTestProfileService(t, newFakeBlob())
	ctx := context.Background()

	ps.Reconcile(ctx, types.Identity{
		ID:       "auth0|u1",
		Email:    "ada@example.com",
		Metadata: map[string]string{"full_name": "Ada", "avatar_url": "https://idp/ada.png"},
	})

	var rows []map[string]any
	if err := ps.db.Table("profiles").Where("user_id = ?", "auth0|u1").Find(&rows).Error; err != nil {
		t.Fatalf("query profiles: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("got %d profile rows, want 1", len(rows))
	}

	if got := stringField(rows[0], "display_name"); got != "Ada" {
		t.Errorf("display_name = %q, want Ada", got)
	}

	if got := stringField(rows[0], "avatar_url"); got != "https://idp/ada.png" {
		t.Errorf("avatar_url = %q, want oauth avatar", got)
	}

	// 镜像行也应写入
	var userCount int64
	ps.db.Table("users").Where("id = ?", "auth0|u1").Count(&userCount)
	if userCount != 1 {
		t.Errorf("got %d user rows, want 1", userCount)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	ps := newTestProfileService(t, newFakeBlob())
	ctx := context.Background()

	ident := types.Identity{ID: "auth0|u1", Email: "ada@example.com", Metadata: map[string]string{"name": "Ada"}}

	readStamp := func() time.Time {
		var row struct{ UpdatedAt time.Time }
		if err := ps.db.Table("profiles").Select("updated_at").Where("user_id = ?", "auth0|u1").Take(&row).Error; err != nil {
			t.Fatalf("read updated_at: %v", err)
		}

		return row.UpdatedAt
	}

	ps.Reconcile(ctx, ident)
	first := readStamp()

	time.Sleep(20 * time.Millisecond)

	ident.Metadata["name"] = "Ada L"
	ps.Reconcile(ctx, ident)

	var rows []map[string]any
	if err := ps.db.Table("profiles").Where("user_id = ?", "auth0|u1").Find(&rows).Error; err != nil {
		t.Fatalf("query profiles: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("got %d profile rows after two reconciles, want 1", len(rows))
	}

	if got := stringField(rows[0], "display_name"); got != "Ada L" {
		t.Errorf("display_name = %q, want refreshed name", got)
	}

	if second := readStamp(); !second.After(first) {
		t.Errorf("updated_at = %v after second reconcile, want later than %v", second, first)
	}
}

func TestReconcileKeepsExistingAvatar(t *testing.T) {
	ps := newTestProfileService(t, newFakeBlob())
	ctx := context.Background()

	err := ps.db.Table("profiles").Create(map[string]any{
		"user_id":      "auth0|u1",
		"display_name": "Ada",
		"avatar_url":   "custom/ada.png",
	}).Error
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	ps.Reconcile(ctx, types.Identity{
		ID:       "auth0|u1",
		Email:    "ada@example.com",
		Metadata: map[string]string{"name": "Ada", "picture": "https://idp/new.png"},
	})

	var rows []map[string]any
	ps.db.Table("profiles").Where("user_id = ?", "auth0|u1").Find(&rows)

	if got := stringField(rows[0], "avatar_url"); got != "custom/ada.png" {
		t.Errorf("avatar_url = %q, existing avatar must win over oauth avatar", got)
	}
}

// TestReconcileLegacySchema 老部署：主键列叫 id，头像列叫 avatarurl.
func TestReconcileLegacySchema(t *testing.T) {
	ps := newTestProfileService(t, newFakeBlob())
	ctx := context.Background()

	if err := ps.db.Exec("DROP TABLE profiles").Error; err != nil {
		t.Fatalf("drop profiles: %v", err)
	}

	err := ps.db.Exec(`CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		display_name TEXT,
		avatarurl TEXT,
		contact TEXT,
		bio TEXT,
		updated_at DATETIME
	)`).Error
	if err != nil {
		t.Fatalf("create legacy profiles: %v", err)
	}

	ps.Reconcile(ctx, types.Identity{
		ID:       "auth0|legacy",
		Email:    "old@example.com",
		Metadata: map[string]string{"name": "Old Hand", "avatar_url": "https://idp/old.png"},
	})

	var rows []map[string]any
	if err := ps.db.Table("profiles").Where("id = ?", "auth0|legacy").Find(&rows).Error; err != nil {
		t.Fatalf("query legacy profiles: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("got %d legacy rows, want 1", len(rows))
	}

	if got := stringField(rows[0], "avatarurl"); got != "https://idp/old.png" {
		t.Errorf("avatarurl = %q, want avatar written to legacy column", got)
	}
}

// 头像候选列一个都不存在时，只丢头像这一个字段，其余字段照常更新.
func TestReconcileWithoutAvatarColumnsKeepsBaseUpdate(t *testing.T) {
	ps := newTestProfileService(t, newFakeBlob())
	ctx := context.Background()

	if err := ps.db.Exec("DROP TABLE profiles").Error; err != nil {
		t.Fatalf("drop profiles: %v", err)
	}

	err := ps.db.Exec(`CREATE TABLE profiles (
		user_id TEXT PRIMARY KEY,
		display_name TEXT,
		contact TEXT,
		bio TEXT,
		updated_at DATETIME
	)`).Error
	if err != nil {
		t.Fatalf("create avatarless profiles: %v", err)
	}

	err = ps.db.Table("profiles").Create(map[string]any{
		"user_id":      "auth0|u1",
		"display_name": "Old",
	}).Error
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	ps.Reconcile(ctx, types.Identity{
		ID:       "auth0|u1",
		Email:    "ada@example.com",
		Metadata: map[string]string{"name": "Ada L", "avatar_url": "https://idp/new.png"},
	})

	var rows []map[string]any
	if err := ps.db.Table("profiles").Where("user_id = ?", "auth0|u1").Find(&rows).Error; err != nil {
		t.Fatalf("query profiles: %v", err)
	}

	if got := stringField(rows[0], "display_name"); got != "Ada L" {
		t.Errorf("display_name = %q, want base fields updated despite missing avatar columns", got)
	}
}

func TestGetProfileSignsAvatar(t *testing.T) {
	ps := newTestProfileService(t, newFakeBlob())
	ctx := context.Background()

	err := ps.db.Table("profiles").Create(map[string]any{
		"user_id":      "auth0|u1",
		"display_name": "Ada",
		"avatar_url":   "auth0|u1/1.png",
	}).Error
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	resp, err := ps.GetProfile(ctx, "auth0|u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}

	if want := "https://signed.test/avatars/auth0|u1/1.png"; resp.AvatarURL != want {
		t.Errorf("AvatarURL = %q, want %q", resp.AvatarURL, want)
	}
}

func TestGetProfileSignFailureFallsBack(t *testing.T) {
	fb := newFakeBlob()
	fb.failSign = true
	ps := newTestProfileService(t, fb)
	ctx := context.Background()

	err := ps.db.Table("profiles").Create(map[string]any{
		"user_id":    "auth0|u1",
		"avatar_url": "auth0|u1/1.png",
	}).Error
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	resp, err := ps.GetProfile(ctx, "auth0|u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}

	if resp.AvatarURL != "auth0|u1/1.png" {
		t.Errorf("AvatarURL = %q, want raw reference on sign failure", resp.AvatarURL)
	}
}

func TestUpdateProfileUploadsAvatar(t *testing.T) {
	fb := newFakeBlob()
	ps := newTestProfileService(t, fb)
	ctx := context.Background()

	err := ps.db.Table("profiles").Create(map[string]any{
		"user_id":      "auth0|u1",
		"display_name": "Ada",
	}).Error
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	resp, err := ps.UpdateProfile(ctx, "auth0|u1", &types.UpdateProfileRequest{
		Bio:           "painter",
		AvatarDataURL: "data:image/png;base64,cG5nLWJ5dGVz",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if resp.Bio != "painter" {
		t.Errorf("Bio = %q, want painter", resp.Bio)
	}

	if len(fb.uploads) != 1 {
		t.Fatalf("got %d uploads, want 1", len(fb.uploads))
	}

	for key := range fb.uploads {
		if !strings.HasPrefix(key, "avatars/auth0|u1/") || !strings.HasSuffix(key, ".png") {
			t.Errorf("avatar object key = %q, want avatars/auth0|u1/<ts>.png", key)
		}
	}

	// 档案里存对象引用而不是完整 URL
	var rows []map[string]any
	ps.db.Table("profiles").Where("user_id = ?", "auth0|u1").Find(&rows)

	ref := stringField(rows[0], "avatar_url")
	if !strings.HasPrefix(ref, "auth0|u1/") {
		t.Errorf("stored avatar ref = %q, want bare object key", ref)
	}
}
