package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"massamba/internal/ai"
	"massamba/internal/app"
	"massamba/internal/config"
	"massamba/internal/pkg/storage/memory"
)

// sseRecorder 为 gin 的 c.Stream 补上 CloseNotify
type sseRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newRecorder() *sseRecorder {
	return &sseRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
}

func (r *sseRecorder) CloseNotify() <-chan bool { return r.closed }

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(chunks ...string) *Server {
	cfg := &config.Config{Server: config.ServerConfig{Mode: "test"}}
	source := &ai.ScriptedSource{Chunks: chunks}
	a, err := app.Assemble(context.Background(), cfg, memory.NewMemoryStorage(), ai.NewClientWithSource(&cfg.AI, source))
	if err != nil {
		panic(err)
	}
	return New(cfg, a)
}

func do(s *Server, method, path, body, token string) *sseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := newRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decode(w *sseRecorder) envelope {
	var env envelope
	So(json.Unmarshal(w.Body.Bytes(), &env), ShouldBeNil)
	return env
}

func TestServer_Chat(t *testing.T) {
	Convey("对话接口", t, func() {
		s := newTestServer("Bonjour", ", je", " suis là")

		Convey("健康检查", func() {
			So(do(s, http.MethodGet, "/health", "", "").Code, ShouldEqual, http.StatusOK)
			w := do(s, http.MethodGet, "/ready", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "memory")
			So(w.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
		})

		Convey("流式发送消息", func() {
			w := do(s, http.MethodPost, "/api/v1/chat/stream", `{"message":"Explique l'IA"}`, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/event-stream")

			body := w.Body.String()
			So(body, ShouldContainSubstring, "event:start")
			So(body, ShouldContainSubstring, "event:thinking")
			So(body, ShouldContainSubstring, "event:message")
			So(body, ShouldContainSubstring, "event:done")
			So(strings.Index(body, "event:start"), ShouldBeLessThan, strings.Index(body, "event:done"))
			So(body, ShouldContainSubstring, `"content":"Bonjour, je suis là"`)

			Convey("对话列表与详情", func() {
				env := decode(do(s, http.MethodGet, "/api/v1/conversations", "", ""))
				var items []struct {
					ID           string `json:"id"`
					Title        string `json:"title"`
					MessageCount int    `json:"message_count"`
					Active       bool   `json:"active"`
				}
				So(json.Unmarshal(env.Data, &items), ShouldBeNil)
				So(items, ShouldHaveLength, 1)
				So(items[0].Title, ShouldEqual, "Explique l'IA")
				So(items[0].MessageCount, ShouldEqual, 2)
				So(items[0].Active, ShouldBeTrue)

				w := do(s, http.MethodGet, "/api/v1/conversations/"+items[0].ID, "", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Bonjour, je suis là")

				env = decode(do(s, http.MethodGet, "/api/v1/conversations?q=introuvable", "", ""))
				So(string(env.Data), ShouldEqual, "[]")
			})

			Convey("开始新对话后不再有当前对话", func() {
				So(do(s, http.MethodDelete, "/api/v1/conversations/active", "", "").Code, ShouldEqual, http.StatusOK)
				So(s.app.Store.Active(), ShouldBeEmpty)
			})
		})

		Convey("空消息返回 400", func() {
			w := do(s, http.MethodPost, "/api/v1/chat/stream", `{"message":"  "}`, "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w).Code, ShouldEqual, 40001)
		})

		Convey("未知对话返回 404", func() {
			w := do(s, http.MethodPut, "/api/v1/conversations/active", `{"id":"nope"}`, "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("欢迎弹窗", func() {
			env := decode(do(s, http.MethodGet, "/api/v1/welcome", "", ""))
			So(string(env.Data), ShouldContainSubstring, `"show":true`)
			So(do(s, http.MethodPost, "/api/v1/welcome/dismiss", "", "").Code, ShouldEqual, http.StatusOK)
			env = decode(do(s, http.MethodGet, "/api/v1/welcome", "", ""))
			So(string(env.Data), ShouldContainSubstring, `"show":false`)
		})
	})
}

func TestServer_Admin(t *testing.T) {
	Convey("管理后台接口", t, func() {
		s := newTestServer("ok")

		login := func(code string) *sseRecorder {
			return do(s, http.MethodPost, "/api/v1/admin/login", `{"code":"`+code+`"}`, "")
		}

		Convey("未登录访问受保护接口返回 401", func() {
			w := do(s, http.MethodGet, "/api/v1/admin/config", "", "")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(decode(w).Code, ShouldEqual, 40101)
		})

		Convey("登录、修改配置、登出", func() {
			w := login(app.DefaultSecretCode)
			So(w.Code, ShouldEqual, http.StatusOK)
			var data struct {
				AccessToken string `json:"access_token"`
				TokenType   string `json:"token_type"`
			}
			So(json.Unmarshal(decode(w).Data, &data), ShouldBeNil)
			So(data.TokenType, ShouldEqual, "Bearer")
			token := data.AccessToken

			w = do(s, http.MethodPatch, "/api/v1/admin/config", `{"default_tone":"simple"}`, token)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"default_tone":"simple"`)
			So(w.Body.String(), ShouldNotContainSubstring, "secret_code_hash")

			w = do(s, http.MethodPatch, "/api/v1/admin/config", `{"default_tone":"sarcastique"}`, token)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w = do(s, http.MethodGet, "/api/v1/admin/logs", "", token)
			So(w.Body.String(), ShouldContainSubstring, "Modification Config")

			So(do(s, http.MethodPost, "/api/v1/admin/logout", "", token).Code, ShouldEqual, http.StatusOK)
			So(do(s, http.MethodGet, "/api/v1/admin/stats", "", token).Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("三次错误后锁定", func() {
			So(login("000000").Code, ShouldEqual, http.StatusUnauthorized)
			So(login("111111").Code, ShouldEqual, http.StatusUnauthorized)
			So(login("333333").Code, ShouldEqual, http.StatusUnauthorized)

			w := login(app.DefaultSecretCode)
			So(w.Code, ShouldEqual, http.StatusLocked)
			So(decode(w).Code, ShouldEqual, 42301)

			env := decode(do(s, http.MethodGet, "/api/v1/admin/lock", "", ""))
			So(string(env.Data), ShouldContainSubstring, `"locked":true`)
			So(string(env.Data), ShouldContainSubstring, `"failed_attempts":3`)
		})

		Convey("登录接口限流", func() {
			var last int
			for i := 0; i < defaultLoginBurst+1; i++ {
				last = login("000000").Code
			}
			So(last, ShouldEqual, http.StatusTooManyRequests)
		})
	})
}

func TestServer_Drain(t *testing.T) {
	Convey("关闭前等待后台生成写完", t, func() {
		cfg := &config.Config{Server: config.ServerConfig{Mode: "test"}}
		source := &ai.ScriptedSource{Chunks: []string{"Un", " deux", " trois"}, Delay: 20 * time.Millisecond}
		a, err := app.Assemble(context.Background(), cfg, memory.NewMemoryStorage(), ai.NewClientWithSource(&cfg.AI, source))
		So(err, ShouldBeNil)
		s := New(cfg, a)

		go func() { _ = a.Chat.Send(context.Background(), "Compte", nil) }()
		for !a.Chat.Status().Loading {
			time.Sleep(time.Millisecond)
		}

		s.drain()
		So(a.Chat.Status().Loading, ShouldBeFalse)

		conv, err := a.Store.Conversation(a.Store.Active())
		So(err, ShouldBeNil)
		So(conv.Messages[1].Content, ShouldEqual, "Un deux trois")
		So(conv.Messages[1].IsStreaming, ShouldBeFalse)
	})
}
