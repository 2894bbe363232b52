// Package console 终端对话界面
//
// 逐行读取输入：普通文本作为消息发送，以 / 开头的为命令。
// 助手回复通过打字机逐词输出。
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"massamba/internal/app"
	"massamba/internal/capability"
	"massamba/internal/model"
	"massamba/internal/service"
	"massamba/internal/store"
	"massamba/internal/typewriter"
)

const (
	assistantName = "Massamba GPT"
	prompt        = "> "
)

const helpText = `Commandes :
  /new            nouvelle conversation
  /list [terme]   lister ou rechercher les conversations
  /open <id>      reprendre une conversation
  /copy           copier la dernière réponse
  /dictate        activer ou couper la dictée
  /help           afficher cette aide
  /quit           quitter`

// Console 终端界面
type Console struct {
	chat    *service.ChatService
	store   *store.Store
	welcome *service.WelcomeService
	out     io.Writer

	clipboard capability.Clipboard
	notice    *capability.CopyNotice
	input     *capability.InputBuffer
	dictation *capability.Dictation

	typewriterOpts []typewriter.Option
}

// Option 选项
type Option func(*Console)

// WithClipboard 替换剪贴板
func WithClipboard(cb capability.Clipboard) Option {
	return func(c *Console) { c.clipboard = cb }
}

// WithRecognizer 替换语音识别
func WithRecognizer(rec capability.Recognizer) Option {
	return func(c *Console) { c.dictation = capability.NewDictation(rec, c.input) }
}

// WithTypewriter 打字机选项
func WithTypewriter(opts ...typewriter.Option) Option {
	return func(c *Console) { c.typewriterOpts = append(c.typewriterOpts, opts...) }
}

// New 创建终端界面
func New(a *app.App, out io.Writer, opts ...Option) *Console {
	input := &capability.InputBuffer{}
	c := &Console{
		chat:      a.Chat,
		store:     a.Store,
		welcome:   a.Welcome,
		out:       out,
		clipboard: capability.NewClipboard(),
		notice:    capability.NewCopyNotice(time.Now),
		input:     input,
		dictation: capability.NewDictation(capability.Absent{}, input),
	}
	if tw := a.Config.Typewriter; tw.MaxDelay > 0 {
		c.typewriterOpts = append(c.typewriterOpts, typewriter.WithDelayRange(tw.MinDelay, tw.MaxDelay))
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run 读取输入直到 /quit、EOF 或 ctx 取消
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	c.greet(ctx)

	scanner := bufio.NewScanner(in)
	for {
		c.printf("%s", prompt)
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "/") {
			quit, err := c.command(ctx, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			continue
		}

		text := capability.AppendTranscript(c.input.Take(), line)
		if strings.TrimSpace(text) == "" {
			continue
		}
		// 发送时结束听写
		if c.dictation.Listening() {
			c.dictation.Stop()
		}
		if err := c.send(ctx, text); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *Console) greet(ctx context.Context) {
	resp, err := c.welcome.Welcome(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load welcome state")
		return
	}
	if !resp.Show {
		c.printf("Tape /help pour la liste des commandes.\n")
		return
	}

	c.printf("%s, %s\n\n%s\n\n", resp.Founder.Name, resp.Founder.Profession, resp.Message)
	c.printf("%s\n\n", helpText)
	if err := c.welcome.Dismiss(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to persist welcome dismissal")
	}
}

// send 发送一条消息，回复逐词输出
func (c *Console) send(ctx context.Context, text string) error {
	tw := typewriter.New(c.typewriterOpts...)

	// 一条回复的全部输出都在 Run 所在的 goroutine 中写出
	started := false
	printed := ""
	render := func(displayed string) {
		if !started {
			started = true
			c.printf("%s : ", assistantName)
		}
		if strings.HasPrefix(displayed, printed) {
			c.printf("%s", displayed[len(printed):])
		} else {
			// 清洗改写了已输出的部分，整段重打
			c.printf("\n%s", displayed)
		}
		printed = displayed
	}

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		tw.Run(ctx, render)
	}()

	var elapsed int64
	err := c.chat.Send(ctx, text, func(u service.Update) {
		if !u.Streaming {
			elapsed = u.GenerationTimeMs
		}
		tw.Update(u.Content, u.Streaming)
	})
	if err != nil {
		// 没有开始生成，结束打字机
		tw.Update(tw.Target(), false)
	}
	<-runDone

	switch {
	case errors.Is(err, service.ErrBusy):
		c.printf("Une réponse est déjà en cours, patiente un instant.\n")
		return nil
	case errors.Is(err, service.ErrEmptyMessage):
		return nil
	case err != nil:
		return err
	}

	c.printf("\n  (%.1fs)\n", float64(elapsed)/1000)
	return nil
}

// command 执行命令，返回是否退出
func (c *Console) command(ctx context.Context, line string) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		c.dictation.Stop()
		return true, nil
	case "/help":
		c.printf("%s\n", helpText)
	case "/new":
		c.store.ClearActive()
		c.printf("Nouvelle conversation.\n")
	case "/list":
		c.list(arg)
	case "/open":
		c.open(arg)
	case "/copy":
		c.copyLast()
	case "/dictate":
		c.toggleDictation(ctx)
	default:
		c.printf("Commande inconnue : %s (tape /help)\n", name)
	}
	return false, nil
}

func (c *Console) list(term string) {
	convs := store.Filter(c.store.Conversations(), term)
	if len(convs) == 0 {
		c.printf("Aucune conversation trouvée.\n")
		return
	}
	active := c.store.Active()
	for _, conv := range convs {
		marker := " "
		if conv.ID == active {
			marker = "*"
		}
		c.printf("%s %s  %s  (%s)\n", marker, conv.ID, conv.Title, conv.LastUpdated.Local().Format("02/01 15:04"))
	}
}

func (c *Console) open(id string) {
	if id == "" {
		c.printf("Usage : /open <id>\n")
		return
	}
	if err := c.store.SetActive(id); err != nil {
		c.printf("Conversation introuvable : %s\n", id)
		return
	}
	conv, err := c.store.Conversation(id)
	if err != nil {
		return
	}
	c.printf("== %s ==\n", conv.Title)
	for _, msg := range conv.Messages {
		who := "Toi"
		if msg.Role == model.RoleAssistant {
			who = assistantName
		}
		c.printf("%s : %s\n", who, msg.Content)
	}
}

func (c *Console) copyLast() {
	msg, ok := c.lastAssistantMessage()
	if !ok {
		c.printf("Rien à copier.\n")
		return
	}
	if err := c.notice.Copy(c.clipboard, msg.ID, msg.Content); err != nil {
		log.Warn().Err(err).Str("message_id", msg.ID).Msg("clipboard write failed")
		c.printf("Impossible de copier le message.\n")
		return
	}
	c.printf("Copié !\n")
}

func (c *Console) lastAssistantMessage() (model.Message, bool) {
	active := c.store.Active()
	if active == "" {
		return model.Message{}, false
	}
	conv, err := c.store.Conversation(active)
	if err != nil {
		return model.Message{}, false
	}
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if msg := conv.Messages[i]; msg.Role == model.RoleAssistant && !msg.IsStreaming {
			return msg, true
		}
	}
	return model.Message{}, false
}

func (c *Console) toggleDictation(ctx context.Context) {
	err := c.dictation.Toggle(ctx)
	switch {
	case errors.Is(err, capability.ErrDictationUnavailable):
		c.printf("La dictée n'est pas disponible sur ce terminal.\n")
	case err != nil:
		log.Warn().Err(err).Msg("dictation failed to start")
		c.printf("Impossible de démarrer la dictée.\n")
	case c.dictation.Listening():
		c.printf("Dictée activée, parle maintenant.\n")
	default:
		c.printf("Dictée coupée.\n")
	}
}
