// Package service 实现业务逻辑：登录对账、作品写入、标签解析与读侧聚合.
package service

import (
	"bytes"
	"context"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/sony/gobreaker"

	"github.com/atichat/workfolio/pkg/configs"
	s3c "github.com/atichat/workfolio/pkg/internal/storage/s3"
	nlog "github.com/atichat/workfolio/pkg/log"
	"github.com/atichat/workfolio/pkg/metrics"
)

// BlobStore 抽象对象存储的最小能力，便于在测试中替换.
type BlobStore interface {
	// Upload 上传对象.
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	// SignURL 生成限时访问 URL.
	SignURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// s3Blob 基于 MinIO 客户端的 BlobStore 实现，签名路径带熔断保护.
type s3Blob struct {
	cli     *s3c.Client
	breaker *gobreaker.CircuitBreaker
}

func newS3Blob(cli *s3c.Client) *s3Blob {
	cbCfg := configs.GetConfig().CircuitBreaker

	var breaker *gobreaker.CircuitBreaker
	if cbCfg.Enabled {
		breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "s3-sign",
			MaxRequests: cbCfg.MaxRequestsInHalf,
			Interval:    time.Duration(cbCfg.IntervalSeconds) * time.Second,
			Timeout:     time.Duration(cbCfg.TimeoutSeconds) * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cbCfg.MinRequests {
					return false
				}

				return float64(counts.TotalFailures)/float64(counts.Requests) >= cbCfg.FailureRate
			},
		})
	}

	return &s3Blob{cli: cli, breaker: breaker}
}

func (b *s3Blob) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := b.cli.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})

	return err
}

func (b *s3Blob) SignURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if b.breaker == nil {
		return b.cli.PresignGet(ctx, bucket, key, ttl)
	}

	out, err := b.breaker.Execute(func() (any, error) {
		return b.cli.PresignGet(ctx, bucket, key, ttl)
	})
	if err != nil {
		return "", err
	}

	return out.(string), nil
}

// signedRef 对存储引用做尽力签名：失败时原样返回引用，绝不报错.
// 引用可以是裸对象键，也可以是历史数据里的完整公开 URL（提取桶后的键）.
func signedRef(ctx context.Context, blobs BlobStore, bucket, ref string, ttl time.Duration) string {
	if ref == "" {
		return ref
	}

	key := ref
	if strings.Contains(ref, "://") {
		marker := "/" + bucket + "/"
		if i := strings.Index(ref, marker); i >= 0 {
			key = ref[i+len(marker):]
		}
	}

	signed, err := blobs.SignURL(ctx, bucket, key, ttl)
	if err != nil || signed == "" {
		metrics.MediaSignFallbacks.Inc()
		nlog.Logger().Warn().Err(err).Str("ref", ref).Msg("sign media url failed, falling back to raw reference")

		return ref
	}

	return signed
}
