package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"massamba/internal/pkg/storage"
)

const defaultBucket = "massamba"

// LocalStorage 本地文件存储，基于 bbolt 单文件数据库
// 重启后数据保留
type LocalStorage struct {
	db     *bolt.DB
	bucket []byte
}

// NewLocalStorage 打开（或创建）本地数据文件
func NewLocalStorage(path, bucket string) (*LocalStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("local storage path is required")
	}
	if bucket == "" {
		bucket = defaultBucket
	}

	// 确保目录存在
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt file: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &LocalStorage{db: db, bucket: []byte(bucket)}, nil
}

// Get 读取
func (s *LocalStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// bbolt 返回的切片只在事务内有效
			value = string(v)
			ok = true
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return value, ok, nil
}

// Set 写入
func (s *LocalStorage) Set(ctx context.Context, key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
}

// Remove 删除
func (s *LocalStorage) Remove(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// Close 关闭数据文件
func (s *LocalStorage) Close() error {
	return s.db.Close()
}

// GetStorageType 获取存储类型
func (s *LocalStorage) GetStorageType() string {
	return string(storage.StorageTypeLocal)
}
