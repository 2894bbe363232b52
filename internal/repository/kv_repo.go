package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"massamba/internal/pkg/mongodb"
	"massamba/internal/pkg/storage"
)

// kvEntry 键值文档
type kvEntry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// KVRepo MongoDB 键值仓库，实现 storage.Storage
type KVRepo struct {
	client     *mongodb.Client
	collection *mongo.Collection
}

// NewKVRepo 创建键值仓库
func NewKVRepo(client *mongodb.Client, collection string) *KVRepo {
	if collection == "" {
		collection = "kv"
	}
	return &KVRepo{
		client:     client,
		collection: client.Collection(collection),
	}
}

// EnsureIndexes 创建索引
func (r *KVRepo) EnsureIndexes(ctx context.Context) error {
	return mongodb.EnsureIndexes(ctx, r.collection)
}

// Get 读取
func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var entry kvEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Set 写入（upsert）
func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	update := bson.M{
		"$set": bson.M{"value": value, "updated_at": time.Now()},
	}
	_, err := r.collection.UpdateByID(ctx, key, update, options.Update().SetUpsert(true))
	return err
}

// Remove 删除
func (r *KVRepo) Remove(ctx context.Context, key string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Close 断开 MongoDB 连接
func (r *KVRepo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Close(ctx)
}

// GetStorageType 获取存储类型
func (r *KVRepo) GetStorageType() string {
	return string(storage.StorageTypeMongo)
}
