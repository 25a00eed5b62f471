package theater

import "math"

// 空間入力ブリッジ。3Dコントローラーレイの交点（UV）から2Dサーフェスの
// ポインターイベントを合成します。内部状態は持ちません。

// PointerKind は合成するポインター操作の種類です。
type PointerKind string

const (
	PointerDown PointerKind = "pointerdown"
	PointerUp   PointerKind = "pointerup"
	PointerMove PointerKind = "pointermove"
)

// コントローラー由来のイベントに付くデバイス種別タグ
const PointerTypeXR = "xr"

// Rect はサーフェスの画面上の絶対位置です。
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// PointerEvent は合成されたポインターイベントです。
type PointerEvent struct {
	Kind        PointerKind
	ClientX     float64
	ClientY     float64
	PointerID   int
	PointerType string
	IsPrimary   bool
	Bubbles     bool
}

// Surface は投影対象の2Dインタラクティブ面です。ゲームキャンバスが実装します。
type Surface interface {
	Size() (widthPx, heightPx float64)
	Bounds() Rect
	DispatchPointer(event PointerEvent)
}

// SurfaceClientPoint はUVをサーフェスの画面上絶対座標へ変換します。
func SurfaceClientPoint(uv UV, surface Surface) Point {
	width, height := surface.Size()
	pixel := MapUVToSurface(uv, width, height)
	rect := surface.Bounds()
	safeWidth := math.Max(width, 1)
	safeHeight := math.Max(height, 1)

	return Point{
		X: rect.Left + pixel.X/safeWidth*rect.Width,
		Y: rect.Top + pixel.Y/safeHeight*rect.Height,
	}
}

// DispatchPointer はUV位置に指定種別のポインターイベントを合成して配送します。
// pointerIDは発生源ごとに安定した識別子です。
func DispatchPointer(surface Surface, kind PointerKind, uv UV, pointerID int) {
	point := SurfaceClientPoint(uv, surface)
	surface.DispatchPointer(PointerEvent{
		Kind:        kind,
		ClientX:     point.X,
		ClientY:     point.Y,
		PointerID:   pointerID,
		PointerType: PointerTypeXR,
		IsPrimary:   pointerID == 1,
		Bubbles:     true,
	})
}
