package memory

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"massamba/internal/pkg/storage"
)

func TestMemoryStorage(t *testing.T) {
	Convey("MemoryStorage 读写删", t, func() {
		ctx := context.Background()
		s := NewMemoryStorage()

		_, ok, err := s.Get(ctx, "missing")
		So(err, ShouldBeNil)
		So(ok, ShouldBeFalse)

		So(s.Set(ctx, "k", "v1"), ShouldBeNil)
		So(s.Set(ctx, "k", "v2"), ShouldBeNil)
		v, ok, err := s.Get(ctx, "k")
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, "v2")

		So(s.Remove(ctx, "k"), ShouldBeNil)
		So(s.Remove(ctx, "k"), ShouldBeNil)
		_, ok, _ = s.Get(ctx, "k")
		So(ok, ShouldBeFalse)

		Convey("关闭后操作返回 ErrClosed", func() {
			So(s.Close(), ShouldBeNil)
			So(s.Set(ctx, "k", "v"), ShouldEqual, storage.ErrClosed)
		})
	})
}
