package ai

import (
	"context"
	"errors"
	"io"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	. "github.com/smartystreets/goconvey/convey"

	"massamba/internal/config"
	"massamba/internal/model"
)

// fakeChatModel 返回固定片段的 ChatModel
type fakeChatModel struct {
	chunks []string
	input  []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	f.input = input
	msgs := make([]*schema.Message, 0, len(f.chunks))
	for _, c := range f.chunks {
		msgs = append(msgs, &schema.Message{Role: schema.Assistant, Content: c})
	}
	return schema.StreamReaderFromArray(msgs), nil
}

func (f *fakeChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

func drain(s SnapshotStream) ([]string, error) {
	var out []string
	for {
		text, err := s.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, text)
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	Convey("系统提示词包含人设参数", t, func() {
		prompt := BuildSystemPrompt(PersonaFromConfig(model.DefaultAdminConfig("hash")))
		So(prompt, ShouldContainSubstring, "Ton : motivant")
		So(prompt, ShouldContainSubstring, "Style : coach motivant")
		So(prompt, ShouldContainSubstring, "Longueur : moyenne")
		So(prompt, ShouldContainSubstring, "TEXTE SIMPLE")
	})
}

func TestChatChain(t *testing.T) {
	Convey("ChatChain 把增量片段累积为完整文本", t, func() {
		fake := &fakeChatModel{chunks: []string{"Bonjour", "", ", je", " suis là"}}
		chain := NewChatChain(fake)

		req := &StreamRequest{
			Prompt:  "Explique l'IA",
			Persona: Persona{Tone: model.ToneSimple},
			History: []Turn{{Role: TurnUser, Text: "Salut"}, {Role: TurnModel, Text: "Bonjour !"}},
		}
		stream, err := chain.Stream(context.Background(), req)
		So(err, ShouldBeNil)
		defer stream.Close()

		snapshots, err := drain(stream)
		So(err, ShouldBeNil)
		So(snapshots, ShouldResemble, []string{"Bonjour", "Bonjour, je", "Bonjour, je suis là"})

		Convey("消息顺序：系统提示词、历史、当前问题", func() {
			So(fake.input, ShouldHaveLength, 4)
			So(fake.input[0].Role, ShouldEqual, schema.System)
			So(fake.input[1].Role, ShouldEqual, schema.User)
			So(fake.input[2].Role, ShouldEqual, schema.Assistant)
			So(fake.input[3].Content, ShouldEqual, "Explique l'IA")
		})
	})
}

func TestScriptedSource(t *testing.T) {
	Convey("ScriptedSource 输出片段后返回错误", t, func() {
		boom := errors.New("boom")
		src := &ScriptedSource{Chunks: []string{"a", "b"}, Err: boom}
		stream, _ := src.Stream(context.Background(), &StreamRequest{Prompt: "x"})

		snapshots, err := drain(stream)
		So(snapshots, ShouldResemble, []string{"a", "ab"})
		So(errors.Is(err, boom), ShouldBeTrue)
		So(src.Requests, ShouldHaveLength, 1)
	})

	Convey("未配置 API Key 时进入模拟模式", t, func() {
		client, err := NewClient(context.Background(), &config.AIConfig{})
		So(err, ShouldBeNil)
		So(client.Mock(), ShouldBeTrue)
	})

	Convey("HistoryFromMessages 把 assistant 映射为 model", t, func() {
		turns := HistoryFromMessages([]model.Message{
			{Role: model.RoleUser, Content: "q"},
			{Role: model.RoleAssistant, Content: "r"},
		})
		So(turns, ShouldResemble, []Turn{{Role: TurnUser, Text: "q"}, {Role: TurnModel, Text: "r"}})
	})
}
