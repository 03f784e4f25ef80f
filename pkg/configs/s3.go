package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// S3Config MinIO S3存储配置.
// MediaBucket 存放作品图片，AvatarBucket 存放用户头像，两者独立授权.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	MediaBucket     string `mapstructure:"media_bucket"`
	AvatarBucket    string `mapstructure:"avatar_bucket"`
	Region          string `mapstructure:"region"`
	// SignTTLSeconds 预签名 GET URL 的有效期（秒）
	SignTTLSeconds int `mapstructure:"sign_ttl_seconds" rule:"min=1"`
}

const (
	DefaultS3Endpoint        = "localhost:9000" // 默认S3端点
	DefaultS3AccessKeyID     = "minioadmin"     // 默认访问密钥ID
	DefaultS3SecretAccessKey = "minioadmin"     // 默认秘密访问密钥
	DefaultS3UseSSL          = false            // 默认是否使用SSL
	DefaultS3MediaBucket     = "media"          // 默认作品媒体存储桶
	DefaultS3AvatarBucket    = "avatars"        // 默认头像存储桶
	DefaultS3Region          = "us-east-1"      // 默认区域
	DefaultS3SignTTLSeconds  = 7 * 24 * 3600    // 默认签名有效期（7天）
)

// GetEndpointURL 获取完整的端点URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// Buckets 返回所有需要确保存在的桶.
func (c *S3Config) Buckets() []string {
	return []string{c.MediaBucket, c.AvatarBucket}
}

// setDefaults 设置 S3 配置的默认值.
func (c *S3Config) setDefaults(v *viper.Viper) {
	v.SetDefault("s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("s3.access_key_id", DefaultS3AccessKeyID)
	v.SetDefault("s3.secret_access_key", DefaultS3SecretAccessKey)
	v.SetDefault("s3.use_ssl", DefaultS3UseSSL)
	v.SetDefault("s3.media_bucket", DefaultS3MediaBucket)
	v.SetDefault("s3.avatar_bucket", DefaultS3AvatarBucket)
	v.SetDefault("s3.region", DefaultS3Region)
	v.SetDefault("s3.sign_ttl_seconds", DefaultS3SignTTLSeconds)
}
