package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalPathPrefix 本地存储对外暴露的路由前缀，由 router 挂载静态目录
const LocalPathPrefix = "/uploads"

// LocalStorage 本地磁盘存储（单机部署）
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage 创建本地存储并确保根目录存在
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir 根目录
func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) Save(ctx context.Context, key, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key = cleanKey(key)
	if key == "" {
		return "", fmt.Errorf("对象 key 为空")
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}
	// 先写临时文件再改名，避免读到半截图片
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	return s.baseURL + LocalPathPrefix + "/" + key, nil
}
