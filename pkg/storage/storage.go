// Package storage 持久化证据图片并返回可访问的 URL。
package storage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MATADOR666-spec/line-bot-project/config"
)

// Storage 图片存储后端
type Storage interface {
	// Save 写入对象，返回公开访问 URL
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// New 按配置选择存储后端
func New(cfg *config.StorageConfig, baseURL string, logger *zap.Logger) (Storage, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStorage(cfg.LocalDir, baseURL)
	case "oss":
		return NewOSSStorage(&cfg.OSS, logger)
	}
	return nil, fmt.Errorf("不支持的存储后端: %s", cfg.Backend)
}

// cleanKey 去除首尾斜杠与 ".." 片段
func cleanKey(key string) string {
	parts := strings.Split(strings.Trim(key, "/"), "/")
	out := parts[:0]
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "/")
}
