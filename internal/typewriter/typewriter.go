// Package typewriter 逐词展示流式文本
//
// 展示内容始终是当前目标文本按空格切分后的前 N 个词；
// 流式结束时立即展示完整文本并停止计时。
package typewriter

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	DefaultMinDelay = 40 * time.Millisecond
	DefaultMaxDelay = 90 * time.Millisecond
)

// Typewriter 打字机效果
type Typewriter struct {
	mu        sync.Mutex
	target    string
	words     []string
	cursor    int
	streaming bool
	// 收到第一次 Update 之前 Run 只等待，不会结束
	started bool

	delay func() time.Duration
	wake  chan struct{}
}

// Option 选项
type Option func(*Typewriter)

// WithDelayRange 每个词之间的随机延迟范围 [min, max)
func WithDelayRange(min, max time.Duration) Option {
	return func(t *Typewriter) { t.delay = uniform(min, max) }
}

// WithDelayFunc 自定义延迟（测试用）
func WithDelayFunc(f func() time.Duration) Option {
	return func(t *Typewriter) { t.delay = f }
}

// New 创建打字机
func New(opts ...Option) *Typewriter {
	t := &Typewriter{
		delay: uniform(DefaultMinDelay, DefaultMaxDelay),
		wake:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func uniform(min, max time.Duration) func() time.Duration {
	if max <= min {
		return func() time.Duration { return min }
	}
	return func() time.Duration {
		return min + rand.N(max-min)
	}
}

func split(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, " ")
}

// Update 设置目标文本与流式状态
// 流式结束时直接跳到完整文本
func (t *Typewriter) Update(text string, streaming bool) {
	t.mu.Lock()
	if text != t.target {
		t.target = text
		t.words = split(text)
	}
	t.cursor = min(t.cursor, len(t.words))
	t.streaming = streaming
	t.started = true
	if !streaming {
		t.cursor = len(t.words)
	}
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Tick 展示下一个词，没有可展示的词时返回 false
func (t *Typewriter) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.streaming || t.cursor >= len(t.words) {
		return false
	}
	t.cursor++
	return true
}

// Displayed 当前展示的文本
func (t *Typewriter) Displayed() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.words[:t.cursor], " ")
}

// Target 当前目标文本
func (t *Typewriter) Target() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.target
}

// Done 流式已结束且完整展示
func (t *Typewriter) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started && !t.streaming && t.cursor == len(t.words)
}

func (t *Typewriter) pending() (more, done bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streaming && t.cursor < len(t.words), t.started && !t.streaming
}

// Run 按随机节奏推进，展示内容变化时调用 render
// 流式结束或 ctx 取消后返回，返回前不留下计时器
func (t *Typewriter) Run(ctx context.Context, render func(string)) {
	last := ""
	emit := func() {
		if d := t.Displayed(); d != last {
			last = d
			render(d)
		}
	}

	for {
		more, done := t.pending()
		if done {
			emit()
			return
		}

		if !more {
			// 已追上目标，等待新文本
			select {
			case <-ctx.Done():
				return
			case <-t.wake:
				continue
			}
		}

		timer := time.NewTimer(t.delay())
	wait:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				t.Tick()
				emit()
				break wait
			case <-t.wake:
				// 文本增长不打断当前延迟，只有结束时立即跳转
				if _, done := t.pending(); done {
					timer.Stop()
					break wait
				}
			}
		}
	}
}
