package storage

import (
	"context"
	"errors"
)

// ErrClosed 存储已关闭
var ErrClosed = errors.New("storage closed")

// Storage 持久化键值存储接口
// 值为不透明字符串，调用方负责序列化
type Storage interface {
	// Get 读取 key，不存在时 ok=false
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set 写入 key（覆盖）
	Set(ctx context.Context, key, value string) error

	// Remove 删除 key，不存在时视为成功
	Remove(ctx context.Context, key string) error

	// Close 释放底层连接
	Close() error

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeMemory StorageType = "memory" // 进程内存
	StorageTypeLocal  StorageType = "local"  // 本地文件 (bbolt)
	StorageTypeRedis  StorageType = "redis"  // Redis
	StorageTypeMongo  StorageType = "mongo"  // MongoDB
)

// 持久化使用的 key
const (
	KeyDatabase     = "massambagpt_db"
	KeyAdminAttempt = "massambagpt_admin_attempts"
	KeyAdminLocked  = "massambagpt_admin_locked_until"
	KeyVisited      = "massambagpt_visited"
)
