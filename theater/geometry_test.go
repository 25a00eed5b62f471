package theater

import "testing"

func TestMapUVToSurface(t *testing.T) {
	tests := []struct {
		name     string
		uv       UV
		width    float64
		height   float64
		expected Point
	}{
		{"中心", UV{X: 0.5, Y: 0.5}, 320, 180, Point{X: 160, Y: 90}},
		{"左下原点が左下ピクセルへ", UV{X: 0, Y: 0}, 320, 180, Point{X: 0, Y: 180}},
		{"右上が右上ピクセルへ", UV{X: 1, Y: 1}, 320, 180, Point{X: 320, Y: 0}},
		{"範囲外はクランプ", UV{X: 2, Y: -1}, 100, 50, Point{X: 100, Y: 50}},
		{"負方向もクランプ", UV{X: -3, Y: 4}, 100, 50, Point{X: 0, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapUVToSurface(tt.uv, tt.width, tt.height)
			if got != tt.expected {
				t.Errorf("MapUVToSurface(%+v, %v, %v) = %+v, want %+v", tt.uv, tt.width, tt.height, got, tt.expected)
			}
		})
	}
}

func TestMapUVToSurfaceZeroSize(t *testing.T) {
	// 0寸法のサーフェスでもゼロ除算やNaNにならない
	got := MapUVToSurface(UV{X: 0.5, Y: 0.5}, 0, 0)
	if got.X < 0 || got.X > 1 || got.Y < 0 || got.Y > 1 {
		t.Errorf("寸法0でも安全な座標を返すべき: %+v", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		value, min, max, expected float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{5, 10, 0, 5}, // min>maxは入れ替え
	}
	for _, tt := range tests {
		if got := Clamp(tt.value, tt.min, tt.max); got != tt.expected {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, got, tt.expected)
		}
	}
}

func TestComputeScreenDimensions(t *testing.T) {
	dims := ComputeScreenDimensions(16.0/9.0, 9, 100)
	if dims.Width != 16 || dims.Height != 9 {
		t.Errorf("16:9で高さ9なら幅16のはず: %+v", dims)
	}

	capped := ComputeScreenDimensions(2, 10, 10)
	if capped.Width != 10 || capped.Height != 5 {
		t.Errorf("maxWidth超過時は幅を上限にして高さを詰める: %+v", capped)
	}

	degenerate := ComputeScreenDimensions(0, 0, 0)
	if degenerate.Width <= 0 || degenerate.Height <= 0 {
		t.Errorf("不正入力でも正の寸法を返すべき: %+v", degenerate)
	}
}
