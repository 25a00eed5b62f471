package theater

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"lunaserver/chat"
	"lunaserver/models"
)

// スクイーズ連打の抑制ウィンドウ
const DefaultReactionCooldown = 250 * time.Millisecond

// 仮想スクリーンの基準寸法（メートル単位）
const (
	defaultScreenHeight = 2.4
	maxScreenWidth      = 4.8
)

// Subscription はリスナー登録の解除ハンドルです。登録と解除の手動対応付けを
// やめ、破棄時にハンドルを一括解除します。
type Subscription interface {
	Unsubscribe()
}

// Mount はシアターのルートノードを差し込むマウント先です。
// Appendは取り外し関数を返し、マウント不可の場合はnilを返します。
type Mount interface {
	Append(nodeID string) (remove func())
}

// Controller は空間コントローラー1本の抽象です。
type Controller interface {
	// Intersection は投影面との現在の交点を返します。交差していなければok=false。
	Intersection() (uv UV, distance float64, ok bool)
	OnSelectStart(fn func()) Subscription
	OnSelectEnd(fn func()) Subscription
	OnSqueezeStart(fn func()) Subscription
	// Haptics はアクチュエーターを返します。非搭載ならnil。
	Haptics() Actuator
}

// Display はレンダリングサブシステムの抽象です。
type Display interface {
	Controllers() []Controller
	OnSessionStart(fn func()) Subscription
	OnSessionEnd(fn func()) Subscription
	OnResize(fn func()) Subscription
	// SetAnimationLoop は毎フレームのコールバックを設定します。nilで停止。
	SetAnimationLoop(fn func(now time.Time))
}

// ChatFeed は処理済みチャットイベントの購読元です。chat.Clientが実装します。
type ChatFeed interface {
	Subscribe(fn func(models.ChatEvent)) chat.Subscription
}

// Config はシアター構築の依存一式です。
type Config struct {
	Surface  Surface
	Mount    Mount
	Display  Display
	ChatFeed ChatFeed                     // nil可（チャット連動なし）
	ChatSend func(models.ClientMessage)   // nil可（リアクション送信なし）
	Logger   *zap.Logger
}

// Theater は仮想シアターのライフサイクル管理者です。構築時に取得した全リソースを
// 所有し、Disposeでちょうど1回ずつ解放することを保証します。
type Theater struct {
	surface Surface
	mount   Mount
	display Display
	send    func(models.ClientMessage)
	logger  *zap.Logger

	now func() time.Time

	resources   resourceList
	subs        []Subscription
	mountRemove func()

	screenTexture  *Texture
	screenDims     ScreenDimensions
	ticker         *Ticker
	audience       *AudienceRing
	audienceRoster map[string]models.Presence

	starsRotationX float64
	starsRotationY float64
	reticleVisible bool

	immersiveActive bool
	reactionIndex   int
	lastReactionAt  time.Time
	cooldown        time.Duration

	disposed bool
}

// New はシアターを構築します。サーフェスかマウント先かディスプレイが欠けていれば
// nilを返します（例外ではなく空ハンドル、呼び出し側が確認する）。
// 構築途中の失敗では取得済みリソースを逆順に解放してからnilを返します。
func New(config Config) *Theater {
	if config.Surface == nil || config.Mount == nil || config.Display == nil {
		return nil
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Theater{
		surface:        config.Surface,
		mount:          config.Mount,
		display:        config.Display,
		send:           config.ChatSend,
		logger:         logger,
		now:            time.Now,
		audienceRoster: make(map[string]models.Presence),
		cooldown:       DefaultReactionCooldown,
	}

	// シーンのリソースを取得順に台帳へ積む
	t.resources.trackNamed("stars-geometry")
	t.resources.trackNamed("stars-material")
	t.resources.trackNamed("nebula-geometry")
	t.resources.trackNamed("nebula-material")
	t.resources.trackNamed("moon-geometry")
	t.resources.trackNamed("moon-material")
	t.screenTexture = t.resources.trackTexture("screen-texture")
	t.resources.trackNamed("screen-geometry")
	t.resources.trackNamed("screen-material")
	t.resources.trackNamed("glow-geometry")
	t.resources.trackNamed("glow-material")
	t.resources.trackNamed("frame-geometry")
	t.resources.trackNamed("frame-material")
	t.resources.trackNamed("reticle-geometry")
	t.resources.trackNamed("reticle-material")
	t.resources.trackNamed("controller-ray-material")

	// 子コンポーネントは内部リソースを自分で所有する。台帳には集約ハンドルだけ積む。
	t.ticker = NewTicker(defaultTickerMaxLines, defaultTickerMaxChars)
	t.resources.track(t.ticker)
	t.audience = NewAudienceRing(1.7)
	t.resources.track(t.audience)

	// マウント不可なら取得済みを巻き戻して空ハンドルを返す
	t.mountRemove = t.mount.Append("xr-root")
	if t.mountRemove == nil {
		t.resources.releaseAll()
		return nil
	}

	t.updateScreenDimensions()
	t.subs = append(t.subs, t.display.OnSessionStart(t.handleSessionStart))
	t.subs = append(t.subs, t.display.OnSessionEnd(t.handleSessionEnd))
	t.subs = append(t.subs, t.display.OnResize(t.updateScreenDimensions))

	for i, controller := range t.display.Controllers() {
		if controller == nil {
			continue
		}
		t.wireController(controller, i+1)
	}

	if config.ChatFeed != nil {
		t.subs = append(t.subs, config.ChatFeed.Subscribe(t.handleChatEvent))
	}

	return t
}

// wireController はコントローラー1本の操作イベントを配線します。
// pointerIDは発生源ごとに安定な識別子です。
func (t *Theater) wireController(controller Controller, pointerID int) {
	t.subs = append(t.subs, controller.OnSelectStart(func() {
		if uv, _, ok := controller.Intersection(); ok {
			DispatchPointer(t.surface, PointerDown, uv, pointerID)
		}
		Pulse(controller.Haptics(), 0.6, 40*time.Millisecond)
	}))

	t.subs = append(t.subs, controller.OnSelectEnd(func() {
		if uv, _, ok := controller.Intersection(); ok {
			DispatchPointer(t.surface, PointerUp, uv, pointerID)
		}
		Pulse(controller.Haptics(), 0.2, 20*time.Millisecond)
	}))

	t.subs = append(t.subs, controller.OnSqueezeStart(func() {
		t.sendNextReaction(controller)
	}))
}

// sendNextReaction は定型リアクションを順繰りに送信します。
// クールダウン内の連打は無視します。
func (t *Theater) sendNextReaction(controller Controller) {
	reactions := chat.Reactions()
	if t.send == nil || len(reactions) == 0 {
		return
	}
	now := t.now()
	if !t.lastReactionAt.IsZero() && now.Sub(t.lastReactionAt) < t.cooldown {
		return
	}
	t.lastReactionAt = now

	reaction := reactions[t.reactionIndex%len(reactions)]
	t.reactionIndex++
	t.send(models.ClientMessage{Type: models.ClientMessageChat, Body: reaction.Body})
	Pulse(controller.Haptics(), 0.4, 30*time.Millisecond)
}

// handleChatEvent は再配信されたチャットイベントを観客リングとティッカーに反映します。
func (t *Theater) handleChatEvent(event models.ChatEvent) {
	if t.disposed {
		return
	}

	switch event.Type {
	case models.ChatEventWelcome:
		t.audienceRoster = make(map[string]models.Presence, len(event.Users))
		for _, user := range event.Users {
			t.audienceRoster[user.ID] = user
		}
		t.syncAudience()
		if event.From != nil && event.From.Name != "" {
			t.ticker.AddMessage("Connected as " + event.From.Name)
		} else {
			t.ticker.AddMessage("Connected to chat")
		}

	case models.ChatEventPresence:
		if event.From == nil {
			return
		}
		switch event.Action {
		case models.PresenceJoin:
			t.audienceRoster[event.From.ID] = *event.From
			t.syncAudience()
			t.ticker.AddMessage(event.From.Name + " joined")
		case models.PresenceRename:
			t.audienceRoster[event.From.ID] = *event.From
			t.syncAudience()
			previous := event.Body
			if previous == "" {
				previous = "Someone"
			}
			t.ticker.AddMessage(previous + " is now " + event.From.Name)
		case models.PresenceLeave:
			delete(t.audienceRoster, event.From.ID)
			t.syncAudience()
			t.ticker.AddMessage(event.From.Name + " left")
		}

	case models.ChatEventChat:
		if event.From == nil {
			return
		}
		t.audience.Pulse(event.From.ID, t.now())
		t.ticker.AddMessage(fmt.Sprintf("%s: %s", event.From.Name, event.Body))
	}
}

func (t *Theater) syncAudience() {
	users := make([]models.Presence, 0, len(t.audienceRoster))
	for _, user := range t.audienceRoster {
		users = append(users, user)
	}
	t.audience.UpdateUsers(users)
}

// Tick は毎フレームの処理です。投影テクスチャをdirtyにし、環境アニメーションを
// 進め、全コントローラーの中で最も近い有効な交点にmoveイベントを配送します。
// 交差するコントローラーが無いフレームではmoveは発生しません。
func (t *Theater) Tick(now time.Time) {
	if t.disposed {
		return
	}

	t.screenTexture.MarkDirty()
	t.starsRotationY += 0.0005
	t.starsRotationX += 0.0002
	t.audience.Tick(now)

	bestDistance := 0.0
	bestPointer := 0
	var bestUV UV
	found := false
	for i, controller := range t.display.Controllers() {
		if controller == nil {
			continue
		}
		uv, distance, ok := controller.Intersection()
		if !ok {
			continue
		}
		if !found || distance < bestDistance {
			found = true
			bestDistance = distance
			bestUV = uv
			bestPointer = i + 1
		}
	}

	if found {
		t.reticleVisible = true
		DispatchPointer(t.surface, PointerMove, bestUV, bestPointer)
	} else {
		t.reticleVisible = false
	}
}

// handleSessionStart は没入セッション開始の冪等トグルです。
func (t *Theater) handleSessionStart() {
	if t.disposed || t.immersiveActive {
		return
	}
	t.immersiveActive = true
	t.display.SetAnimationLoop(t.Tick)
	t.logger.Info("没入セッション開始")
}

// handleSessionEnd は没入セッション終了の冪等トグルです。
func (t *Theater) handleSessionEnd() {
	if !t.immersiveActive {
		return
	}
	t.immersiveActive = false
	t.display.SetAnimationLoop(nil)
	t.reticleVisible = false
	t.logger.Info("没入セッション終了")
}

// updateScreenDimensions はサーフェスのアスペクト比から仮想スクリーンの寸法を
// 再計算します。リサイズのたびに呼ばれます。
func (t *Theater) updateScreenDimensions() {
	if t.disposed {
		return
	}
	width, height := t.surface.Size()
	aspect := 16.0 / 9.0
	if width > 0 && height > 0 {
		aspect = width / height
	}
	t.screenDims = ComputeScreenDimensions(aspect, defaultScreenHeight, maxScreenWidth)
}

// ScreenDimensions は現在の仮想スクリーン寸法を返します。
func (t *Theater) ScreenDimensions() ScreenDimensions { return t.screenDims }

// ImmersiveActive は没入セッション中かを返します。
func (t *Theater) ImmersiveActive() bool { return t.immersiveActive }

// ReticleVisible は照準の表示状態を返します。
func (t *Theater) ReticleVisible() bool { return t.reticleVisible }

// Ticker はメッセージ表示板を返します。
func (t *Theater) Ticker() *Ticker { return t.ticker }

// Audience は観客リングを返します。
func (t *Theater) Audience() *AudienceRing { return t.audience }

// Resources は所有リソース台帳のスナップショットを返します。
func (t *Theater) Resources() []Resource { return t.resources.snapshot() }

// Dispose はシアターを破棄します。tickループの停止、全リスナーの解除、
// 所有リソースの逆順解放、マウントノードの除去を行います。複数回呼んでも安全です。
func (t *Theater) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true

	t.display.SetAnimationLoop(nil)
	t.immersiveActive = false
	t.reticleVisible = false

	for i := len(t.subs) - 1; i >= 0; i-- {
		t.subs[i].Unsubscribe()
	}
	t.subs = nil

	t.resources.releaseAll()

	if t.mountRemove != nil {
		t.mountRemove()
		t.mountRemove = nil
	}
	t.logger.Info("シアターを破棄")
}
