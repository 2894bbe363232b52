package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"massamba/internal/model"
	"massamba/internal/pkg/dataurl"
	"massamba/internal/pkg/jwt"
	"massamba/internal/pkg/password"
	"massamba/internal/pkg/storage/memory"
)

// 1x1 GIF
var gifPixel = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

func ptr[T any](v T) *T { return &v }

func TestAdminService(t *testing.T) {
	Convey("管理后台服务", t, func() {
		ctx := context.Background()
		st := newAdminStore()
		guard := NewLockoutGuard(memory.NewMemoryStorage(), st, 3, 15*time.Minute)
		svc := NewAdminService(st, guard, jwt.NewJWT("secret", time.Hour), 1024)

		Convey("正确管理码签发会话，登出后会话失效", func() {
			res, err := svc.Login(ctx, testCode)
			So(err, ShouldBeNil)
			So(res.Token, ShouldNotBeEmpty)

			sessionID, err := svc.Authorize(res.Token)
			So(err, ShouldBeNil)

			svc.Logout(sessionID)
			_, err = svc.Authorize(res.Token)
			So(errors.Is(err, ErrSessionEnded), ShouldBeTrue)
			So(st.Snapshot().SecurityLogs[0].Action, ShouldEqual, "Déconnexion")
		})

		Convey("错误管理码", func() {
			_, err := svc.Login(ctx, "9999")
			So(errors.Is(err, ErrInvalidCode), ShouldBeTrue)

			lock, err := svc.LockStatus(ctx)
			So(err, ShouldBeNil)
			So(lock.FailedAttempts, ShouldEqual, 1)
			So(lock.Locked, ShouldBeFalse)
		})

		Convey("面板关闭时不可登录", func() {
			_, err := svc.UpdateConfig(&model.AdminConfigPatch{PanelActive: ptr(false)})
			So(err, ShouldBeNil)
			_, err = svc.Login(ctx, testCode)
			So(errors.Is(err, ErrPanelDisabled), ShouldBeTrue)
		})

		Convey("配置浅合并，每个字段一条审计日志", func() {
			cfg, err := svc.UpdateConfig(&model.AdminConfigPatch{
				DefaultTone:     ptr(model.ToneProfessional),
				Specializations: []string{"IA"},
			})
			So(err, ShouldBeNil)
			So(cfg.DefaultTone, ShouldEqual, model.ToneProfessional)
			So(cfg.Specializations, ShouldResemble, []string{"IA"})
			So(cfg.ResponseStyle, ShouldEqual, model.ResponseStyleCoach)

			logs := st.Snapshot().SecurityLogs
			So(logs, ShouldHaveLength, 2)
			So(logs[0].Action, ShouldEqual, "Modification Config")
			So(logs[0].Details, ShouldEndWith, "specializations")
			So(logs[1].Details, ShouldEndWith, "default_tone")
		})

		Convey("并发修改不同字段互不覆盖", func() {
			const n = 20
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					_, _ = svc.UpdateConfig(&model.AdminConfigPatch{AIBehavior: ptr("Toujours bienveillant")})
				}()
				go func() {
					defer wg.Done()
					_, _ = svc.UpdateConfig(&model.AdminConfigPatch{WelcomePopupMessage: ptr("Akwaaba")})
				}()
			}
			wg.Wait()

			cfg := st.Config()
			So(cfg.AIBehavior, ShouldEqual, "Toujours bienveillant")
			So(cfg.WelcomePopupMessage, ShouldEqual, "Akwaaba")

			var founderWG sync.WaitGroup
			founderWG.Add(2)
			go func() {
				defer founderWG.Done()
				svc.UpdateFounder(&model.FounderPatch{Name: ptr("Massamba")})
			}()
			go func() {
				defer founderWG.Done()
				_, _ = svc.UploadAvatar(bytes.NewReader(gifPixel))
			}()
			founderWG.Wait()

			founder := st.Snapshot().FounderProfile
			So(founder.Name, ShouldEqual, "Massamba")
			So(founder.AvatarURL, ShouldStartWith, "data:image/gif;base64,")
		})

		Convey("未知语气被拒绝且不修改配置", func() {
			_, err := svc.UpdateConfig(&model.AdminConfigPatch{DefaultTone: ptr(model.Tone("sarcastique"))})
			So(errors.Is(err, ErrInvalidPatch), ShouldBeTrue)
			So(st.Config().DefaultTone, ShouldEqual, model.ToneMotivating)
		})

		Convey("修改管理码后只保存哈希", func() {
			_, err := svc.UpdateConfig(&model.AdminConfigPatch{SecretCode: ptr("5678")})
			So(err, ShouldBeNil)
			hash := st.Config().SecretCodeHash
			So(hash, ShouldNotEqual, "5678")
			So(password.Verify("5678", hash), ShouldBeTrue)
		})

		Convey("创始人资料与头像", func() {
			founder := svc.UpdateFounder(&model.FounderPatch{Name: ptr("M. Diop")})
			So(founder.Name, ShouldEqual, "M. Diop")
			So(founder.Profession, ShouldEqual, model.DefaultFounder().Profession)

			founder, err := svc.UploadAvatar(bytes.NewReader(gifPixel))
			So(err, ShouldBeNil)
			So(strings.HasPrefix(founder.AvatarURL, "data:image/gif;base64,"), ShouldBeTrue)
			So(st.Snapshot().SecurityLogs[0].Action, ShouldEqual, "Import Image")

			_, err = svc.UploadAvatar(strings.NewReader("pas une image"))
			So(errors.Is(err, dataurl.ErrNotImage), ShouldBeTrue)
		})

		Convey("统计叠加当前对话数", func() {
			st.StartConversation("Bonjour")
			stats := svc.Stats()
			So(stats.TotalConversations, ShouldEqual, model.DefaultStats().TotalConversations+1)
		})
	})
}

func TestWelcomeService(t *testing.T) {
	Convey("欢迎弹窗关闭后不再展示", t, func() {
		ctx := context.Background()
		svc := NewWelcomeService(newAdminStore(), memory.NewMemoryStorage())

		w, err := svc.Welcome(ctx)
		So(err, ShouldBeNil)
		So(w.Show, ShouldBeTrue)
		So(w.Founder.Name, ShouldEqual, "Massamba Diop")

		So(svc.Dismiss(ctx), ShouldBeNil)
		w, _ = svc.Welcome(ctx)
		So(w.Show, ShouldBeFalse)
	})
}
