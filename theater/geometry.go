package theater

import "math"

// UV は投影面上の正規化座標です。名目上[0,1]×[0,1]ですが範囲外も許容（クランプ）します。
type UV struct {
	X float64
	Y float64
}

// ScreenDimensions は仮想スクリーンの寸法（メートル単位）です。
type ScreenDimensions struct {
	Width  float64
	Height float64
}

// Clamp はvalueを[min,max]に収めます。min>maxの場合は入れ替えて処理します。
func Clamp(value, min, max float64) float64 {
	if min > max {
		return Clamp(value, max, min)
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ComputeScreenDimensions はアスペクト比と高さからスクリーン寸法を計算します。
// maxWidthを超える場合は幅を上限にして高さを詰めます。
func ComputeScreenDimensions(aspect, height, maxWidth float64) ScreenDimensions {
	safeAspect := aspect
	if safeAspect <= 0 {
		safeAspect = 1
	}
	safeHeight := height
	if safeHeight <= 0 {
		safeHeight = 1
	}

	width := safeHeight * safeAspect
	adjustedHeight := safeHeight
	if maxWidth > 0 && width > maxWidth {
		width = maxWidth
		adjustedHeight = width / safeAspect
	}

	return ScreenDimensions{Width: width, Height: adjustedHeight}
}

// Point は2Dサーフェス上のピクセル座標です。
type Point struct {
	X float64
	Y float64
}

// MapUVToSurface はUV座標をピクセル座標に写像します。範囲外のUVはクランプし、
// Y軸は反転します（UVは下から上、ピクセルは上から下）。
func MapUVToSurface(uv UV, surfaceWidthPx, surfaceHeightPx float64) Point {
	safeWidth := math.Max(surfaceWidthPx, 1)
	safeHeight := math.Max(surfaceHeightPx, 1)
	clampedX := Clamp(uv.X, 0, 1)
	clampedY := Clamp(uv.Y, 0, 1)
	x := math.Round(clampedX * safeWidth)
	y := math.Round((1 - clampedY) * safeHeight)

	return Point{
		X: Clamp(x, 0, safeWidth),
		Y: Clamp(y, 0, safeHeight),
	}
}
