package dataurl

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// 1x1 PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestFromImage(t *testing.T) {
	Convey("图片编码为 data URL", t, func() {
		url, err := FromImage(pngPixel, 1024)
		So(err, ShouldBeNil)
		So(strings.HasPrefix(url, "data:image/png;base64,"), ShouldBeTrue)
	})

	Convey("非图片被拒绝", t, func() {
		_, err := FromImage([]byte("hello world"), 1024)
		So(errors.Is(err, ErrNotImage), ShouldBeTrue)
	})

	Convey("超出大小限制", t, func() {
		_, err := FromReader(bytes.NewReader(pngPixel), 10)
		So(errors.Is(err, ErrTooLarge), ShouldBeTrue)
	})

	Convey("空文件", t, func() {
		_, err := FromImage(nil, 0)
		So(errors.Is(err, ErrEmpty), ShouldBeTrue)
	})
}
