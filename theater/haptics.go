package theater

import "time"

// Actuator は振動アクチュエーターの抽象です。コントローラーが持たない場合はnilです。
type Actuator interface {
	Pulse(intensity float64, duration time.Duration) error
}

// Pulse はアクチュエーターに振動を要求します。fire-and-forgetで、
// アクチュエーター不在や失敗はfalseに畳み込み、呼び出し側へ伝播させません。
func Pulse(actuator Actuator, intensity float64, duration time.Duration) bool {
	if actuator == nil {
		return false
	}

	clamped := Clamp(intensity, 0, 1)
	if duration < 0 {
		duration = 0
	}
	if err := actuator.Pulse(clamped, duration); err != nil {
		return false
	}
	return true
}

// PulseAll は接続中の全アクチュエーターに振動を要求し、成功数を返します。
func PulseAll(actuators []Actuator, intensity float64, duration time.Duration) int {
	count := 0
	for _, actuator := range actuators {
		if Pulse(actuator, intensity, duration) {
			count++
		}
	}
	return count
}

// SupportsImmersive は没入セッション対応の問い合わせ結果をboolに畳み込みます。
// 問い合わせ自体の失敗は非対応として扱います。
func SupportsImmersive(query func() (bool, error)) bool {
	if query == nil {
		return false
	}
	supported, err := query()
	if err != nil {
		return false
	}
	return supported
}
