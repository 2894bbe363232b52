package storagefactory

import (
	"context"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"massamba/internal/config"
	"massamba/internal/pkg/storage"
)

func TestNewStorage(t *testing.T) {
	Convey("NewStorage 按类型创建存储", t, func() {
		ctx := context.Background()

		Convey("memory 存储", func() {
			s, err := NewStorage(ctx, &config.Config{Storage: config.StorageConfig{Type: "memory"}})
			So(err, ShouldBeNil)
			So(s.GetStorageType(), ShouldEqual, string(storage.StorageTypeMemory))
			So(s.Close(), ShouldBeNil)
		})

		Convey("local 存储可读写并在重新打开后保留数据", func() {
			path := filepath.Join(t.TempDir(), "data", "massamba.db")
			cfg := &config.Config{Storage: config.StorageConfig{
				Type:  "local",
				Local: &config.LocalConfig{Path: path},
			}}

			s, err := NewStorage(ctx, cfg)
			So(err, ShouldBeNil)
			So(s.GetStorageType(), ShouldEqual, string(storage.StorageTypeLocal))
			So(s.Set(ctx, storage.KeyVisited, "true"), ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			reopened, err := NewStorage(ctx, cfg)
			So(err, ShouldBeNil)
			defer reopened.Close()

			v, ok, err := reopened.Get(ctx, storage.KeyVisited)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "true")

			So(reopened.Remove(ctx, storage.KeyVisited), ShouldBeNil)
			_, ok, err = reopened.Get(ctx, storage.KeyVisited)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("缺少 local 配置返回错误", func() {
			_, err := NewStorage(ctx, &config.Config{Storage: config.StorageConfig{Type: "local"}})
			So(err, ShouldNotBeNil)
		})

		Convey("缺少 redis 地址返回错误", func() {
			_, err := NewStorage(ctx, &config.Config{Storage: config.StorageConfig{Type: "redis"}})
			So(err, ShouldNotBeNil)
		})

		Convey("不支持的类型返回错误", func() {
			_, err := NewStorage(ctx, &config.Config{Storage: config.StorageConfig{Type: "s3"}})
			So(err, ShouldNotBeNil)
		})
	})
}
