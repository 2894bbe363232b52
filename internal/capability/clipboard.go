package capability

import (
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

// CopyAckDuration 复制成功提示的展示时长
const CopyAckDuration = 2 * time.Second

// Clipboard 剪贴板
type Clipboard interface {
	WriteText(text string) error
}

// SystemClipboard 系统剪贴板
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// NoopClipboard 没有剪贴板的宿主，写入直接丢弃
type NoopClipboard struct{}

func (NoopClipboard) WriteText(string) error { return nil }

// NewClipboard 宿主支持时返回系统剪贴板
func NewClipboard() Clipboard {
	if clipboard.Unsupported {
		return NoopClipboard{}
	}
	return SystemClipboard{}
}

// CopyNotice 记录最近一次复制的消息，提示在 CopyAckDuration 后消失
type CopyNotice struct {
	mu    sync.Mutex
	id    string
	until time.Time
	now   func() time.Time
}

// NewCopyNotice 创建复制提示；now 为 nil 时使用 time.Now
func NewCopyNotice(now func() time.Time) *CopyNotice {
	if now == nil {
		now = time.Now
	}
	return &CopyNotice{now: now}
}

// Copy 复制消息内容并记录提示；写入失败时不记录
func (n *CopyNotice) Copy(cb Clipboard, messageID, text string) error {
	if err := cb.WriteText(text); err != nil {
		return err
	}
	n.mu.Lock()
	n.id = messageID
	n.until = n.now().Add(CopyAckDuration)
	n.mu.Unlock()
	return nil
}

// Copied 该消息是否处于“已复制”提示期
func (n *CopyNotice) Copied(messageID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.id == messageID && n.now().Before(n.until)
}
