package theater

import (
	"math"
	"sort"
	"time"

	"lunaserver/models"
)

// 観客のパルス演出の持続時間と拡大率
const (
	pulseDuration = 350 * time.Millisecond
	pulseScale    = 1.35
)

type audienceMember struct {
	presence models.Presence
	mesh     *TrackedResource
	label    *TrackedResource
	scale    float64
	angle    float64
}

// AudienceRing はチャット名簿を環状に可視化するコンポーネントです。
// メンバーごとのリソースを自分で所有・解放します。
type AudienceRing struct {
	radius   float64
	geometry *TrackedResource
	members  map[string]*audienceMember
	pulses   map[string]time.Time
	released bool
}

// NewAudienceRing は観客リングを生成します。
func NewAudienceRing(radius float64) *AudienceRing {
	return &AudienceRing{
		radius:   radius,
		geometry: NewTrackedResource("audience-geometry"),
		members:  make(map[string]*audienceMember),
		pulses:   make(map[string]time.Time),
	}
}

// UpdateUsers は名簿全体と同期します。いなくなったメンバーのリソースは解放し、
// 新規メンバーを追加し、改名は既存メンバーの表示を更新します。
func (a *AudienceRing) UpdateUsers(users []models.Presence) {
	if a.released {
		return
	}

	sorted := make([]models.Presence, len(users))
	copy(sorted, users)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	seen := make(map[string]bool, len(sorted))
	for _, user := range sorted {
		seen[user.ID] = true
	}
	for id, member := range a.members {
		if !seen[id] {
			member.label.Release()
			member.mesh.Release()
			delete(a.members, id)
			delete(a.pulses, id)
		}
	}

	for _, user := range sorted {
		if existing, ok := a.members[user.ID]; ok {
			existing.presence = user
			continue
		}
		a.members[user.ID] = &audienceMember{
			presence: user,
			mesh:     NewTrackedResource("audience-mesh-" + user.ID),
			label:    NewTrackedResource("audience-label-" + user.ID),
			scale:    1,
		}
	}

	a.positionMembers(sorted)
}

// positionMembers はメンバーを環状に等間隔配置します。
func (a *AudienceRing) positionMembers(sorted []models.Presence) {
	count := len(sorted)
	if count == 0 {
		return
	}
	step := (math.Pi * 2) / float64(count)
	start := -math.Pi / 2
	for i, user := range sorted {
		if member, ok := a.members[user.ID]; ok {
			member.angle = start + step*float64(i)
		}
	}
}

// Pulse は指定メンバーを一時的に拡大します。不在IDはno-opです。
func (a *AudienceRing) Pulse(id string, now time.Time) {
	member, ok := a.members[id]
	if !ok {
		return
	}
	member.scale = pulseScale
	a.pulses[id] = now.Add(pulseDuration)
}

// Tick は期限を過ぎたパルスを元のスケールに戻します。
func (a *AudienceRing) Tick(now time.Time) {
	for id, until := range a.pulses {
		if now.Before(until) {
			continue
		}
		if member, ok := a.members[id]; ok {
			member.scale = 1
		}
		delete(a.pulses, id)
	}
}

// Count は現在のメンバー数を返します。
func (a *AudienceRing) Count() int { return len(a.members) }

// MemberScale は指定メンバーの現在スケールを返します。不在は0です。
func (a *AudienceRing) MemberScale(id string) float64 {
	if member, ok := a.members[id]; ok {
		return member.scale
	}
	return 0
}

// Release は全メンバーのリソースと共有ジオメトリを解放します。冪等です。
func (a *AudienceRing) Release() {
	if a.released {
		return
	}
	a.released = true
	for id, member := range a.members {
		member.label.Release()
		member.mesh.Release()
		delete(a.members, id)
	}
	a.geometry.Release()
	a.pulses = make(map[string]time.Time)
}

// Released は解放済みかを返します。
func (a *AudienceRing) Released() bool { return a.released }
