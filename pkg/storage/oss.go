package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"

	"github.com/MATADOR666-spec/line-bot-project/config"
)

// OSSStorage 阿里云 OSS 存储
type OSSStorage struct {
	bucket     *oss.Bucket
	endpoint   string
	bucketName string
	prefix     string
	publicBase string
}

// NewOSSStorage 创建 OSS 存储并校验 bucket 可访问
func NewOSSStorage(cfg *config.OSSConfig, logger *zap.Logger) (*OSSStorage, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("OSS 配置不完整: endpoint/access_key/secret_key/bucket")
	}

	client, err := oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("创建 OSS 客户端失败: %w", err)
	}
	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("打开 OSS bucket 失败: %w", err)
	}

	if loc, err := client.GetBucketLocation(cfg.Bucket); err != nil {
		// 子账号常无 GetBucketLocation 权限，仅告警
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 {
			logger.Warn("跳过 OSS bucket 位置校验", zap.String("bucket", cfg.Bucket))
		} else {
			return nil, fmt.Errorf("校验 OSS bucket 失败: %w", err)
		}
	} else {
		logger.Info("OSS bucket 就绪", zap.String("bucket", cfg.Bucket), zap.String("location", loc))
	}

	return &OSSStorage{
		bucket:     bkt,
		endpoint:   cfg.Endpoint,
		bucketName: cfg.Bucket,
		prefix:     strings.Trim(cfg.Prefix, "/"),
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
	}, nil
}

func (s *OSSStorage) Save(ctx context.Context, key, contentType string, data []byte) (string, error) {
	key = s.objectKey(key)
	if key == "" {
		return "", fmt.Errorf("对象 key 为空")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.bucket.PutObject(key, bytes.NewReader(data), opts...); err != nil {
		return "", fmt.Errorf("上传 OSS 失败: %w", err)
	}
	return s.PublicURL(key), nil
}

func (s *OSSStorage) objectKey(key string) string {
	key = cleanKey(key)
	if key == "" || s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

// PublicURL 对象的公开访问地址；配置 public_base（CDN）时优先使用
func (s *OSSStorage) PublicURL(key string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucketName, end, key)
}
