package ai

import (
	"context"
	"io"
	"strings"
	"time"
)

// mockReply 未配置 API Key 时的模拟回复
var mockReply = []string{
	"C'est une excellente question ! ",
	"Je fonctionne actuellement en mode démonstration, ",
	"sans connexion au modèle. ",
	"Ajoute une clé API dans la configuration pour des réponses complètes.",
}

// ScriptedSource 按脚本输出的文本来源
// Chunks 为增量片段，Recv 返回累积文本；Err 不为空时在片段输出完后返回该错误
type ScriptedSource struct {
	Chunks []string
	Err    error
	Delay  time.Duration

	// Requests 记录收到的请求
	Requests []*StreamRequest
}

// NewMockSource 模拟模式使用的文本来源
func NewMockSource() *ScriptedSource {
	return &ScriptedSource{Chunks: mockReply, Delay: 80 * time.Millisecond}
}

// Stream 实现 TextSource
func (s *ScriptedSource) Stream(ctx context.Context, req *StreamRequest) (SnapshotStream, error) {
	s.Requests = append(s.Requests, req)
	return &scriptedStream{ctx: ctx, chunks: s.Chunks, err: s.Err, delay: s.Delay}, nil
}

type scriptedStream struct {
	ctx    context.Context
	chunks []string
	err    error
	delay  time.Duration
	pos    int
	buf    strings.Builder
}

func (s *scriptedStream) Recv() (string, error) {
	if s.pos >= len(s.chunks) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	if s.delay > 0 {
		select {
		case <-s.ctx.Done():
			return "", s.ctx.Err()
		case <-time.After(s.delay):
		}
	}
	s.buf.WriteString(s.chunks[s.pos])
	s.pos++
	return s.buf.String(), nil
}

func (s *scriptedStream) Close() {}
