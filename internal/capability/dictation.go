package capability

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

var ErrDictationUnavailable = errors.New("dictation is not available on this host")

// Segment 一段识别结果，只有 Final 的段落会写入输入框
type Segment struct {
	Text  string
	Final bool
}

// Sink 接收识别事件
type Sink interface {
	Result(segments []Segment)
	Error(err error)
	End()
}

// Recognizer 宿主平台的语音识别
type Recognizer interface {
	Start(ctx context.Context, lang string, sink Sink) error
	Stop()
}

// Absent 没有语音识别能力的宿主
type Absent struct{}

func (Absent) Start(context.Context, string, Sink) error { return ErrDictationUnavailable }
func (Absent) Stop()                                     {}

// AppendTranscript 把识别文本追加到输入内容，中间以一个空格分隔
func AppendTranscript(buf, transcript string) string {
	if transcript == "" {
		return buf
	}
	if buf == "" {
		return transcript
	}
	return buf + " " + transcript
}

// InputBuffer 输入框内容
type InputBuffer struct {
	mu   sync.Mutex
	text string
}

// Text 当前内容
func (b *InputBuffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Set 覆盖内容
func (b *InputBuffer) Set(text string) {
	b.mu.Lock()
	b.text = text
	b.mu.Unlock()
}

// Take 取出内容并清空
func (b *InputBuffer) Take() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	text := b.text
	b.text = ""
	return text
}

func (b *InputBuffer) appendTranscript(transcript string) {
	b.mu.Lock()
	b.text = AppendTranscript(b.text, transcript)
	b.mu.Unlock()
}

// Dictation 听写控制：把最终识别结果写入输入框
// 出错或识别自然结束都会退出听写状态
type Dictation struct {
	rec   Recognizer
	input *InputBuffer
	lang  string

	mu        sync.Mutex
	listening bool
}

// NewDictation 创建听写控制，rec 为 nil 时视为 Absent
func NewDictation(rec Recognizer, input *InputBuffer) *Dictation {
	if rec == nil {
		rec = Absent{}
	}
	return &Dictation{rec: rec, input: input, lang: "fr-FR"}
}

// Available 宿主是否支持听写
func (d *Dictation) Available() bool {
	_, absent := d.rec.(Absent)
	return !absent
}

// Listening 是否正在听写
func (d *Dictation) Listening() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listening
}

// Start 开始听写
func (d *Dictation) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.listening {
		d.mu.Unlock()
		return nil
	}
	d.listening = true
	d.mu.Unlock()

	if err := d.rec.Start(ctx, d.lang, d); err != nil {
		d.setListening(false)
		return err
	}
	return nil
}

// Stop 停止听写
func (d *Dictation) Stop() {
	d.rec.Stop()
	d.setListening(false)
}

// Toggle 切换听写状态
func (d *Dictation) Toggle(ctx context.Context) error {
	if d.Listening() {
		d.Stop()
		return nil
	}
	return d.Start(ctx)
}

func (d *Dictation) setListening(v bool) {
	d.mu.Lock()
	d.listening = v
	d.mu.Unlock()
}

// Result 实现 Sink
func (d *Dictation) Result(segments []Segment) {
	var final strings.Builder
	for _, seg := range segments {
		if seg.Final {
			final.WriteString(seg.Text)
		}
	}
	if final.Len() > 0 {
		d.input.appendTranscript(final.String())
	}
}

// Error 实现 Sink
func (d *Dictation) Error(err error) {
	log.Warn().Err(err).Msg("dictation error")
	d.setListening(false)
}

// End 实现 Sink
func (d *Dictation) End() {
	d.setListening(false)
}
