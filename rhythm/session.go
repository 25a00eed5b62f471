package rhythm

import (
	"math"
	"time"

	"go.uber.org/zap"

	"lunaserver/models"
)

// セッション終了から結果確定までの猶予時間（ms）
const DefaultSettleMarginMs = 500

// Phase はセッションの状態です。
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseFinished
)

type noteStatus int

const (
	notePending noteStatus = iota
	noteHit
	noteMiss
)

// Sink はセッション完了時に最終スコアを受け取る外部コラボレーターです。
// セッションはスコアの保存先を所有しません。
type Sink interface {
	RhythmFinished(summary models.ScoreSummary)
}

// Session はリズムセッションの状態機械です。ノーツ列と時計を所有し、
// 入力イベントの判定をEvaluateに委譲して、終了時にSummarizeで確定します。
// ロックは持たず、ホスト側の単一イベントループから呼ばれる前提です。
type Session struct {
	windows  Windows
	beatmap  models.Beatmap
	settleMs float64
	logger   *zap.Logger

	now       func() time.Time // テストで差し替え可能な時計
	phase     Phase
	paused    bool
	startedAt time.Time
	statuses  []noteStatus
	results   []models.HitResult
	summary   models.ScoreSummary
	sink      Sink
}

// NewSession はセッションを生成します。sinkはnil可（結果は取得専用になる）。
func NewSession(beatmap models.Beatmap, windows Windows, sink Sink, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		windows:  windows,
		beatmap:  beatmap,
		settleMs: DefaultSettleMarginMs,
		logger:   logger,
		now:      time.Now,
		phase:    PhaseNotStarted,
		statuses: make([]noteStatus, len(beatmap.Notes)),
		sink:     sink,
	}
}

// Phase は現在の状態を返します。
func (s *Session) Phase() Phase { return s.phase }

// Paused は一時停止フラグの状態を返します。
func (s *Session) Paused() bool { return s.paused }

// SetPaused はtick駆動の判定と入力受付を一時停止します。ノーツ状態と開始時刻は
// リセットされません。時計自体の停止は呼び出し側の責務です。
func (s *Session) SetPaused(paused bool) { s.paused = paused }

// Results は判定済み結果のスナップショットを返します。
func (s *Session) Results() []models.HitResult {
	results := make([]models.HitResult, len(s.results))
	copy(results, s.results)
	return results
}

// Summary は確定済みの最終スコアを返します。Finished以前はゼロ値です。
func (s *Session) Summary() models.ScoreSummary { return s.summary }

// Start は最初の開始シグナルでNotStarted→Runningに遷移します。
// セッション開始時刻は現在の時計読み取り＋譜面オフセットです。
func (s *Session) Start() {
	if s.phase != PhaseNotStarted {
		return
	}
	s.phase = PhaseRunning
	s.startedAt = s.now()
	s.logger.Info("リズムセッション開始",
		zap.Int("notes", len(s.beatmap.Notes)),
		zap.Float64("offsetMs", s.beatmap.OffsetMs),
	)
}

// CurrentMs はセッション開始からの経過時間（ms）です。オフセット中は負になります。
func (s *Session) CurrentMs() float64 {
	if s.phase == PhaseNotStarted {
		return -s.beatmap.OffsetMs
	}
	return float64(s.now().Sub(s.startedAt))/float64(time.Millisecond) - s.beatmap.OffsetMs
}

// HandleInput は離散入力イベントを処理します。未開始なら開始シグナルとして扱い、
// 実行中なら最も近いpendingノーツを判定します。適格なノーツが無ければ無視します。
func (s *Session) HandleInput() {
	if s.phase == PhaseNotStarted {
		s.Start()
		return
	}
	if s.phase != PhaseRunning || s.paused {
		return
	}

	currentMs := s.CurrentMs()
	bestIndex := -1
	bestDelta := math.Inf(1)
	for i, noteMs := range s.beatmap.Notes {
		if s.statuses[i] != notePending {
			continue
		}
		absDelta := math.Abs(currentMs - noteMs)
		if absDelta < bestDelta {
			bestDelta = absDelta
			bestIndex = i
		}
	}

	// 適格なpendingノーツが無い入力は状態を変えない（エラーではない）
	if bestIndex == -1 || bestDelta > s.windows.GoodMs {
		return
	}

	result := Evaluate(s.windows, currentMs, s.beatmap.Notes[bestIndex])
	if result.Grade == models.GradeMiss {
		s.statuses[bestIndex] = noteMiss
	} else {
		s.statuses[bestIndex] = noteHit
	}
	s.results = append(s.results, result)
}

// Tick は周期呼び出しで、goodウィンドウを過ぎたpendingノーツをmiss確定し、
// 全ノーツ解決後に猶予時間を超えたらセッションを終了します。
// ノーツごとの個別タイマーは持たず、期限切れはここだけで検出します。
func (s *Session) Tick() {
	if s.phase != PhaseRunning || s.paused {
		return
	}

	currentMs := s.CurrentMs()
	for i, noteMs := range s.beatmap.Notes {
		if s.statuses[i] != notePending {
			continue
		}
		if currentMs > noteMs+s.windows.GoodMs {
			s.statuses[i] = noteMiss
			s.results = append(s.results, models.HitResult{
				Grade:    models.GradeMiss,
				TimingMs: currentMs,
				NoteMs:   noteMs,
				DeltaMs:  currentMs - noteMs,
			})
		}
	}

	lastNote := 0.0
	if n := len(s.beatmap.Notes); n > 0 {
		lastNote = s.beatmap.Notes[n-1]
	}
	if currentMs > lastNote+s.windows.GoodMs+s.settleMs && s.allResolved() {
		s.finish()
	}
}

func (s *Session) allResolved() bool {
	for _, status := range s.statuses {
		if status == notePending {
			return false
		}
	}
	return true
}

// finish は最終スコアを一度だけ計算してシンクに渡します。
func (s *Session) finish() {
	s.phase = PhaseFinished
	s.summary = Summarize(s.results)
	s.logger.Info("リズムセッション終了",
		zap.Int("perfect", s.summary.Perfect),
		zap.Int("good", s.summary.Good),
		zap.Int("miss", s.summary.Miss),
		zap.Float64("accuracy", s.summary.Accuracy),
	)
	if s.sink != nil {
		s.sink.RhythmFinished(s.summary)
	}
}
