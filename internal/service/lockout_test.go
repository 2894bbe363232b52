package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"

	"massamba/internal/model"
	"massamba/internal/pkg/id"
	"massamba/internal/pkg/password"
	"massamba/internal/pkg/storage"
	"massamba/internal/pkg/storage/memory"
	"massamba/internal/store"
)

const testCode = "1234"

func newAdminStore() *store.Store {
	hash, err := password.HashWithCost(testCode, bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return store.New(model.NewDatabase(hash, time.Now()), store.WithIDGenerator(id.Sequence("log")))
}

func TestLockoutGuard(t *testing.T) {
	Convey("管理员登录锁定", t, func() {
		ctx := context.Background()
		kv := memory.NewMemoryStorage()
		st := newAdminStore()
		now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
		guard := NewLockoutGuard(kv, st, 0, 0, WithLockoutClock(func() time.Time { return now }))

		Convey("连续三次错误后锁定 15 分钟", func() {
			for i := 0; i < 3; i++ {
				So(errors.Is(guard.Submit(ctx, "0000"), ErrInvalidCode), ShouldBeTrue)
			}

			state, err := guard.Status(ctx)
			So(err, ShouldBeNil)
			So(state.Locked, ShouldBeTrue)
			So(state.Attempts, ShouldEqual, 3)
			So(state.LockedUntil.Equal(now.Add(15*time.Minute)), ShouldBeTrue)
			So(state.Remaining(now), ShouldEqual, 15*time.Minute)

			raw, ok, _ := kv.Get(ctx, storage.KeyAdminLocked)
			So(ok, ShouldBeTrue)
			So(raw, ShouldEqual, strconv.FormatInt(now.Add(15*time.Minute).UnixMilli(), 10))

			logs := st.Snapshot().SecurityLogs
			So(logs[0].Action, ShouldEqual, "Verrouillage système")
			So(logs[1].Details, ShouldContainSubstring, "Tentative 3/3")

			Convey("锁定期间即使管理码正确也被拒绝，且不计数", func() {
				So(errors.Is(guard.Submit(ctx, testCode), ErrLocked), ShouldBeTrue)
				So(errors.Is(guard.Submit(ctx, "0000"), ErrLocked), ShouldBeTrue)
				state, _ := guard.Status(ctx)
				So(state.Attempts, ShouldEqual, 3)
				So(st.Snapshot().SecurityLogs[0].Status, ShouldEqual, model.AdminLogBlocked)
			})

			Convey("到期后自动解锁，正确管理码清零", func() {
				now = now.Add(15*time.Minute + time.Second)
				state, _ := guard.Status(ctx)
				So(state.Locked, ShouldBeFalse)

				So(guard.Submit(ctx, testCode), ShouldBeNil)
				state, _ = guard.Status(ctx)
				So(state.Attempts, ShouldEqual, 0)
				_, ok, _ := kv.Get(ctx, storage.KeyAdminLocked)
				So(ok, ShouldBeFalse)
			})

			Convey("状态在重新创建守卫后依然有效", func() {
				reloaded := NewLockoutGuard(kv, st, 3, 15*time.Minute, WithLockoutClock(func() time.Time { return now }))
				state, _ := reloaded.Status(ctx)
				So(state.Locked, ShouldBeTrue)
			})
		})

		Convey("未达到三次前输入正确管理码会清零并保持开放", func() {
			So(errors.Is(guard.Submit(ctx, "0000"), ErrInvalidCode), ShouldBeTrue)
			So(errors.Is(guard.Submit(ctx, "1111"), ErrInvalidCode), ShouldBeTrue)
			So(guard.Submit(ctx, testCode), ShouldBeNil)

			state, _ := guard.Status(ctx)
			So(state.Locked, ShouldBeFalse)
			So(state.Attempts, ShouldEqual, 0)
			So(st.Snapshot().SecurityLogs[0].Action, ShouldEqual, "Connexion réussie")
		})

		Convey("空管理码算作失败", func() {
			So(errors.Is(guard.Submit(ctx, ""), ErrInvalidCode), ShouldBeTrue)
			state, _ := guard.Status(ctx)
			So(state.Attempts, ShouldEqual, 1)
		})
	})
}
