package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"massamba/internal/ai"
	"massamba/internal/model"
	"massamba/internal/pkg/id"
	"massamba/internal/store"
)

func newChatStore() *store.Store {
	return store.New(model.NewDatabase("hash", time.Now()), store.WithIDGenerator(id.Sequence("id")))
}

// gatedSource 每个片段都要等待 release 后才输出
type gatedSource struct {
	chunks  []string
	release chan struct{}
}

func (g *gatedSource) Stream(ctx context.Context, req *ai.StreamRequest) (ai.SnapshotStream, error) {
	inner, _ := (&ai.ScriptedSource{Chunks: g.chunks}).Stream(ctx, req)
	return &gatedStream{inner: inner, release: g.release}, nil
}

type gatedStream struct {
	inner   ai.SnapshotStream
	release chan struct{}
}

func (s *gatedStream) Recv() (string, error) {
	<-s.release
	return s.inner.Recv()
}

func (s *gatedStream) Close() {}

func TestChatService_Send(t *testing.T) {
	Convey("发送 \"Explique l'IA\" 并接收三个快照", t, func() {
		st := newChatStore()
		src := &ai.ScriptedSource{Chunks: []string{"Bonjour", ", je", " suis là"}}
		svc := NewChatService(st, src)

		var updates []Update
		err := svc.Send(context.Background(), "Explique l'IA", func(u Update) {
			updates = append(updates, u)
		})
		So(err, ShouldBeNil)

		convs := st.Conversations()
		So(convs, ShouldHaveLength, 1)
		conv := convs[0]
		So(conv.Title, ShouldEqual, "Explique l'IA")
		So(st.Active(), ShouldEqual, conv.ID)
		So(conv.Messages, ShouldHaveLength, 2)
		So(conv.Messages[0].Role, ShouldEqual, model.RoleUser)
		So(conv.Messages[0].Content, ShouldEqual, "Explique l'IA")
		So(conv.Messages[1].Role, ShouldEqual, model.RoleAssistant)
		So(conv.Messages[1].Content, ShouldEqual, "Bonjour, je suis là")
		So(conv.Messages[1].IsStreaming, ShouldBeFalse)
		So(conv.Messages[1].GenerationTimeMs, ShouldNotBeNil)

		Convey("更新按到达顺序推送，仅最后一条结束生成", func() {
			So(updates, ShouldHaveLength, 5)
			So(updates[0].Thinking, ShouldBeTrue)
			So(updates[1].Content, ShouldEqual, "Bonjour")
			So(updates[2].Content, ShouldEqual, "Bonjour, je")
			So(updates[3].Content, ShouldEqual, "Bonjour, je suis là")
			for _, u := range updates[:4] {
				So(u.Streaming, ShouldBeTrue)
			}
			So(updates[4].Streaming, ShouldBeFalse)
			So(updates[4].Content, ShouldEqual, "Bonjour, je suis là")
		})

		Convey("第二条消息追加到当前对话并带上历史", func() {
			src.Chunks = []string{"Oui"}
			So(svc.Send(context.Background(), "Et ensuite ?", nil), ShouldBeNil)

			So(st.Conversations(), ShouldHaveLength, 1)
			conv, _ := st.Conversation(st.Active())
			So(conv.Messages, ShouldHaveLength, 4)
			So(conv.Messages[2].Content, ShouldEqual, "Et ensuite ?")
			So(conv.Messages[3].Content, ShouldEqual, "Oui")

			req := src.Requests[1]
			So(req.Prompt, ShouldEqual, "Et ensuite ?")
			So(req.History, ShouldResemble, []ai.Turn{
				{Role: ai.TurnUser, Text: "Explique l'IA"},
				{Role: ai.TurnModel, Text: "Bonjour, je suis là"},
			})
			So(req.Persona.Tone, ShouldEqual, model.ToneMotivating)
		})

		Convey("新对话不带历史", func() {
			So(src.Requests[0].History, ShouldBeEmpty)
		})
	})

	Convey("快照在写入前清理格式", t, func() {
		st := newChatStore()
		svc := NewChatService(st, &ai.ScriptedSource{Chunks: []string{"**Bon", "jour** # ", "[lien](http://x)"}})
		So(svc.Send(context.Background(), "Salut", nil), ShouldBeNil)

		conv := st.Conversations()[0]
		So(conv.Messages[1].Content, ShouldEqual, "Bonjour  lien")
	})

	Convey("生成失败", t, func() {
		st := newChatStore()

		Convey("没有内容时写入道歉文本", func() {
			svc := NewChatService(st, &ai.ScriptedSource{Err: errors.New("provider down")})
			So(svc.Send(context.Background(), "Salut", nil), ShouldBeNil)

			msg := st.Conversations()[0].Messages[1]
			So(msg.Content, ShouldEqual, FallbackMessage)
			So(msg.IsStreaming, ShouldBeFalse)
			So(svc.Status().Loading, ShouldBeFalse)
		})

		Convey("已有部分内容时保留", func() {
			svc := NewChatService(st, &ai.ScriptedSource{Chunks: []string{"Début"}, Err: errors.New("reset")})
			So(svc.Send(context.Background(), "Salut", nil), ShouldBeNil)

			msg := st.Conversations()[0].Messages[1]
			So(msg.Content, ShouldEqual, "Début")
			So(msg.IsStreaming, ShouldBeFalse)
		})
	})

	Convey("空消息被拒绝", t, func() {
		svc := NewChatService(newChatStore(), &ai.ScriptedSource{})
		So(errors.Is(svc.Send(context.Background(), "   ", nil), ErrEmptyMessage), ShouldBeTrue)
	})

	Convey("生成中再次发送返回 ErrBusy，且调用方取消不影响生成", t, func() {
		st := newChatStore()
		release := make(chan struct{})
		svc := NewChatService(st, &gatedSource{chunks: []string{"Un", " deux"}, release: release})

		ctx, cancel := context.WithCancel(context.Background())
		var wg sync.WaitGroup
		wg.Add(1)
		var sendErr error
		go func() {
			defer wg.Done()
			sendErr = svc.Send(ctx, "Premier", nil)
		}()

		for !svc.Status().Thinking {
			time.Sleep(time.Millisecond)
		}
		So(svc.Status().Loading, ShouldBeTrue)
		So(errors.Is(svc.Send(context.Background(), "Second", nil), ErrBusy), ShouldBeTrue)

		// 取消调用方并切换到新对话，生成仍写入原对话
		cancel()
		convID := st.Active()
		st.ClearActive()
		close(release)
		wg.Wait()

		So(sendErr, ShouldBeNil)
		conv, err := st.Conversation(convID)
		So(err, ShouldBeNil)
		So(conv.Messages, ShouldHaveLength, 2)
		So(conv.Messages[1].Content, ShouldEqual, "Un deux")
		So(conv.Messages[1].IsStreaming, ShouldBeFalse)
		So(svc.Status().Loading, ShouldBeFalse)
	})
}

// failingSource Stream 本身返回错误
type failingSource struct{}

func (failingSource) Stream(ctx context.Context, req *ai.StreamRequest) (ai.SnapshotStream, error) {
	return nil, io.ErrUnexpectedEOF
}

func TestChatService_StreamStartFailure(t *testing.T) {
	Convey("无法建立流时同样写入道歉文本", t, func() {
		st := newChatStore()
		svc := NewChatService(st, failingSource{})
		So(svc.Send(context.Background(), "Salut", nil), ShouldBeNil)

		msg := st.Conversations()[0].Messages[1]
		So(msg.Content, ShouldEqual, FallbackMessage)
		So(msg.IsStreaming, ShouldBeFalse)
	})
}

func TestChatService_WaitIdle(t *testing.T) {
	Convey("WaitIdle 等到生成结束才返回", t, func() {
		st := newChatStore()
		release := make(chan struct{})
		svc := NewChatService(st, &gatedSource{chunks: []string{"Un", " deux"}, release: release})

		So(svc.WaitIdle(context.Background()), ShouldBeNil)

		done := make(chan error, 1)
		go func() { done <- svc.Send(context.Background(), "Bonjour", nil) }()
		for !svc.Status().Loading {
			time.Sleep(time.Millisecond)
		}

		short, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		So(errors.Is(svc.WaitIdle(short), context.DeadlineExceeded), ShouldBeTrue)

		close(release)
		So(svc.WaitIdle(context.Background()), ShouldBeNil)
		So(<-done, ShouldBeNil)

		conv, err := st.Conversation(st.Active())
		So(err, ShouldBeNil)
		So(conv.Messages[1].Content, ShouldEqual, "Un deux")
		So(conv.Messages[1].IsStreaming, ShouldBeFalse)
	})
}
