package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atichat/workfolio/pkg/internal/model"
)

// newTestDB 打开内存 sqlite 并建好全部表.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// 内存库只能有一条连接，否则池里的新连接各自是空库.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{}, &model.Profile{},
		&model.Work{}, &model.WorkTag{}, &model.Tag{}, &model.Media{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// fakeBlob 进程内 BlobStore，可注入上传/签名失败.
type fakeBlob struct {
	mu      sync.Mutex
	uploads map[string][]byte

	failUploadAfter int // 第 N 次之后的上传报错，0 表示不报错
	failSign        bool
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{uploads: map[string][]byte{}}
}

func (f *fakeBlob) Upload(_ context.Context, bucket, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUploadAfter > 0 && len(f.uploads) >= f.failUploadAfter {
		return fmt.Errorf("upload rejected")
	}

	f.uploads[bucket+"/"+key] = data

	return nil
}

func (f *fakeBlob) SignURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	if f.failSign {
		return "", fmt.Errorf("sign unavailable")
	}

	return "https://signed.test/" + bucket + "/" + key, nil
}

func newTestWorkService(t *testing.T, blobs BlobStore) *WorkService {
	t.Helper()

	return &WorkService{
		db:          newTestDB(t),
		blobs:       blobs,
		mediaBucket: "media",
		signTTL:     time.Hour,
	}
}

func newTestProfileService(t *testing.T, blobs BlobStore) *ProfileService {
	t.Helper()

	return &ProfileService{
		db:           newTestDB(t),
		blobs:        blobs,
		avatarBucket: "avatars",
		signTTL:      time.Hour,
	}
}
