package theater

import (
	"testing"
	"time"

	"lunaserver/chat"
	"lunaserver/models"
)

type fakeSub struct{ unsubs int }

func (s *fakeSub) Unsubscribe() { s.unsubs++ }

type fakeController struct {
	uv       UV
	distance float64
	hasHit   bool

	selectStart  func()
	selectEnd    func()
	squeezeStart func()
	actuator     *fakeActuator
	subs         []*fakeSub
}

func (c *fakeController) newSub() Subscription {
	sub := &fakeSub{}
	c.subs = append(c.subs, sub)
	return sub
}

func (c *fakeController) Intersection() (UV, float64, bool) { return c.uv, c.distance, c.hasHit }
func (c *fakeController) OnSelectStart(fn func()) Subscription {
	c.selectStart = fn
	return c.newSub()
}
func (c *fakeController) OnSelectEnd(fn func()) Subscription {
	c.selectEnd = fn
	return c.newSub()
}
func (c *fakeController) OnSqueezeStart(fn func()) Subscription {
	c.squeezeStart = fn
	return c.newSub()
}
func (c *fakeController) Haptics() Actuator {
	if c.actuator == nil {
		return nil
	}
	return c.actuator
}

type fakeDisplay struct {
	controllers []Controller

	sessionStart func()
	sessionEnd   func()
	resize       func()
	loop         func(time.Time)
	loopStarts   int
	subs         []*fakeSub
}

func (d *fakeDisplay) newSub() Subscription {
	sub := &fakeSub{}
	d.subs = append(d.subs, sub)
	return sub
}

func (d *fakeDisplay) Controllers() []Controller { return d.controllers }
func (d *fakeDisplay) OnSessionStart(fn func()) Subscription {
	d.sessionStart = fn
	return d.newSub()
}
func (d *fakeDisplay) OnSessionEnd(fn func()) Subscription {
	d.sessionEnd = fn
	return d.newSub()
}
func (d *fakeDisplay) OnResize(fn func()) Subscription {
	d.resize = fn
	return d.newSub()
}
func (d *fakeDisplay) SetAnimationLoop(fn func(time.Time)) {
	d.loop = fn
	if fn != nil {
		d.loopStarts++
	}
}

type fakeMount struct {
	fail        bool
	removeCount int
}

func (m *fakeMount) Append(nodeID string) func() {
	if m.fail {
		return nil
	}
	return func() { m.removeCount++ }
}

type fakeFeed struct {
	handler func(models.ChatEvent)
	sub     *fakeSub
}

func (f *fakeFeed) Subscribe(fn func(models.ChatEvent)) chat.Subscription {
	f.handler = fn
	f.sub = &fakeSub{}
	return f.sub
}

type theaterFixture struct {
	theater    *Theater
	surface    *fakeSurface
	mount      *fakeMount
	display    *fakeDisplay
	feed       *fakeFeed
	sent       []models.ClientMessage
	controller *fakeController
}

func newTheaterFixture(t *testing.T) *theaterFixture {
	t.Helper()
	f := &theaterFixture{
		surface: newFakeSurface(),
		mount:   &fakeMount{},
		feed:    &fakeFeed{},
		controller: &fakeController{
			uv:       UV{X: 0.5, Y: 0.5},
			distance: 1,
			hasHit:   true,
			actuator: &fakeActuator{},
		},
	}
	f.display = &fakeDisplay{controllers: []Controller{f.controller}}
	f.theater = New(Config{
		Surface:  f.surface,
		Mount:    f.mount,
		Display:  f.display,
		ChatFeed: f.feed,
		ChatSend: func(msg models.ClientMessage) { f.sent = append(f.sent, msg) },
	})
	if f.theater == nil {
		t.Fatal("構築に失敗")
	}
	return f
}

func TestNewMissingDependencies(t *testing.T) {
	surface := newFakeSurface()
	mount := &fakeMount{}
	display := &fakeDisplay{}

	if New(Config{Mount: mount, Display: display}) != nil {
		t.Error("サーフェス無しはnil")
	}
	if New(Config{Surface: surface, Display: display}) != nil {
		t.Error("マウント先無しはnil")
	}
	if New(Config{Surface: surface, Mount: mount}) != nil {
		t.Error("ディスプレイ無しはnil")
	}
}

func TestNewMountFailure(t *testing.T) {
	mount := &fakeMount{fail: true}
	theater := New(Config{
		Surface: newFakeSurface(),
		Mount:   mount,
		Display: &fakeDisplay{},
	})
	if theater != nil {
		t.Fatal("マウント失敗はnil")
	}
	if mount.removeCount != 0 {
		t.Error("付いていないノードを外そうとしない")
	}
}

func TestDisposeReleasesExactlyOnce(t *testing.T) {
	f := newTheaterFixture(t)
	resources := f.theater.Resources()
	ticker := f.theater.Ticker()
	audience := f.theater.Audience()

	f.theater.Dispose()
	f.theater.Dispose()

	for _, resource := range resources {
		if !resource.Released() {
			t.Errorf("未解放のリソースがある: %+v", resource)
		}
		if tracked, ok := resource.(*TrackedResource); ok && tracked.ReleaseCount() != 1 {
			t.Errorf("%s の解放回数 = %d, want 1", tracked.Name(), tracked.ReleaseCount())
		}
	}
	if !ticker.Released() || !audience.Released() {
		t.Error("子コンポーネントも解放される")
	}
	if f.mount.removeCount != 1 {
		t.Errorf("マウントノードの除去はちょうど1回: %d", f.mount.removeCount)
	}
	for _, sub := range f.display.subs {
		if sub.unsubs != 1 {
			t.Errorf("リスナー解除はちょうど1回: %d", sub.unsubs)
		}
	}
	for _, sub := range f.controller.subs {
		if sub.unsubs != 1 {
			t.Errorf("コントローラーのリスナー解除はちょうど1回: %d", sub.unsubs)
		}
	}
	if f.feed.sub.unsubs != 1 {
		t.Errorf("チャット購読の解除はちょうど1回: %d", f.feed.sub.unsubs)
	}
}

func TestSessionToggleIdempotent(t *testing.T) {
	f := newTheaterFixture(t)

	f.display.sessionStart()
	f.display.sessionStart()
	if !f.theater.ImmersiveActive() {
		t.Error("セッション開始後はアクティブ")
	}
	if f.display.loopStarts != 1 {
		t.Errorf("ループ開始はちょうど1回: %d", f.display.loopStarts)
	}

	f.display.sessionEnd()
	f.display.sessionEnd()
	if f.theater.ImmersiveActive() {
		t.Error("セッション終了後は非アクティブ")
	}
	if f.display.loop != nil {
		t.Error("終了でループは停止する")
	}
}

func TestResizeRecomputesScreenDimensions(t *testing.T) {
	f := newTheaterFixture(t)

	// 100x50のサーフェスはアスペクト比2、高さ2.4で幅ちょうど4.8
	f.surface.width = 100
	f.surface.height = 50
	f.display.resize()
	dims := f.theater.ScreenDimensions()
	if dims.Width != 4.8 || dims.Height != 2.4 {
		t.Errorf("dims = %+v, want {4.8 2.4}", dims)
	}

	// 横長になったら幅を上限にして高さを詰める
	f.surface.width = 200
	f.display.resize()
	dims = f.theater.ScreenDimensions()
	if dims.Width != 4.8 || dims.Height != 1.2 {
		t.Errorf("dims = %+v, want {4.8 1.2}", dims)
	}
}

func TestTickDispatchesMoveToNearest(t *testing.T) {
	f := newTheaterFixture(t)
	far := &fakeController{uv: UV{X: 0.1, Y: 0.1}, distance: 5, hasHit: true}
	f.controller.distance = 2
	f.display.controllers = []Controller{far, f.controller}

	f.theater.Tick(time.Now())

	if len(f.surface.events) != 1 {
		t.Fatalf("moveは1件のはず: %d", len(f.surface.events))
	}
	event := f.surface.events[0]
	if event.Kind != PointerMove {
		t.Errorf("Kind = %q, want %q", event.Kind, PointerMove)
	}
	if event.PointerID != 2 {
		t.Errorf("最も近いコントローラーのID = %d, want 2", event.PointerID)
	}
	if !f.theater.ReticleVisible() {
		t.Error("交差中は照準を表示")
	}

	far.hasHit = false
	f.controller.hasHit = false
	f.theater.Tick(time.Now())
	if len(f.surface.events) != 1 {
		t.Error("交差が無いフレームではmoveを出さない")
	}
	if f.theater.ReticleVisible() {
		t.Error("交差が無ければ照準は非表示")
	}
}

func TestSelectDispatchesPointerEvents(t *testing.T) {
	f := newTheaterFixture(t)

	f.controller.selectStart()
	f.controller.selectEnd()

	if len(f.surface.events) != 2 {
		t.Fatalf("down/upの2件のはず: %d", len(f.surface.events))
	}
	if f.surface.events[0].Kind != PointerDown || f.surface.events[1].Kind != PointerUp {
		t.Errorf("イベント種別が不正: %+v", f.surface.events)
	}
	if f.controller.actuator.calls != 2 {
		t.Errorf("down/upそれぞれで振動: %d", f.controller.actuator.calls)
	}

	// 交差していなければイベントは出さないが振動はする
	f.controller.hasHit = false
	f.controller.selectStart()
	if len(f.surface.events) != 2 {
		t.Error("交点が無ければdownを出さない")
	}
}

func TestReactionCooldown(t *testing.T) {
	f := newTheaterFixture(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f.theater.now = func() time.Time { return now }

	f.controller.squeezeStart()
	if len(f.sent) != 1 {
		t.Fatalf("1回目は送信される: %d", len(f.sent))
	}
	if f.sent[0].Type != models.ClientMessageChat || f.sent[0].Body != "*wave*" {
		t.Errorf("最初のリアクション = %+v", f.sent[0])
	}

	// クールダウン内の連打は無視
	now = now.Add(100 * time.Millisecond)
	f.controller.squeezeStart()
	if len(f.sent) != 1 {
		t.Errorf("クールダウン内は送信しない: %d", len(f.sent))
	}

	now = now.Add(DefaultReactionCooldown)
	f.controller.squeezeStart()
	if len(f.sent) != 2 {
		t.Fatalf("クールダウン明けは送信される: %d", len(f.sent))
	}
	if f.sent[1].Body != "*clap*" {
		t.Errorf("リアクションは順繰り: %q", f.sent[1].Body)
	}
}

func TestChatEventsDriveAudienceAndTicker(t *testing.T) {
	f := newTheaterFixture(t)

	f.feed.handler(models.ChatEvent{
		Type: models.ChatEventWelcome,
		From: &models.Presence{ID: "u1", Name: "Alice"},
		Users: []models.Presence{
			{ID: "u1", Name: "Alice"},
			{ID: "u2", Name: "Bob"},
		},
	})
	if f.theater.Audience().Count() != 2 {
		t.Errorf("welcomeで観客を同期: %d", f.theater.Audience().Count())
	}
	lines := f.theater.Ticker().Lines()
	if len(lines) != 1 || lines[0] != "Connected as Alice" {
		t.Errorf("接続通知の行: %v", lines)
	}

	f.feed.handler(models.ChatEvent{
		Type:   models.ChatEventPresence,
		Action: models.PresenceJoin,
		From:   &models.Presence{ID: "u3", Name: "Carol"},
	})
	if f.theater.Audience().Count() != 3 {
		t.Errorf("入場で観客が増える: %d", f.theater.Audience().Count())
	}

	f.feed.handler(models.ChatEvent{
		Type: models.ChatEventChat,
		From: &models.Presence{ID: "u2", Name: "Bob"},
		Body: "hi",
	})
	if f.theater.Audience().MemberScale("u2") != pulseScale {
		t.Error("発言者はパルスする")
	}
	lines = f.theater.Ticker().Lines()
	if lines[len(lines)-1] != "Bob: hi" {
		t.Errorf("発言の行: %v", lines)
	}

	f.feed.handler(models.ChatEvent{
		Type:   models.ChatEventPresence,
		Action: models.PresenceLeave,
		From:   &models.Presence{ID: "u2", Name: "Bob"},
	})
	if f.theater.Audience().Count() != 2 {
		t.Errorf("退場で観客が減る: %d", f.theater.Audience().Count())
	}
}

func TestDisposedTheaterIgnoresEvents(t *testing.T) {
	f := newTheaterFixture(t)
	f.theater.Dispose()

	// 破棄後のイベントやtickは何も起こさない
	f.feed.handler(models.ChatEvent{
		Type:   models.ChatEventPresence,
		Action: models.PresenceJoin,
		From:   &models.Presence{ID: "u1", Name: "Alice"},
	})
	f.theater.Tick(time.Now())

	if f.theater.Audience().Count() != 0 {
		t.Error("破棄後は観客を増やさない")
	}
	if len(f.surface.events) != 0 {
		t.Error("破棄後はイベントを配送しない")
	}
}
