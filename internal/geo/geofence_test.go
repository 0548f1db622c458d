package geo

import "testing"

// 测试用方形围栏, 顶点为 (lon, lat)
func squareZone() Polygon {
	return Polygon{
		{51.0, 35.0},
		{52.0, 35.0},
		{52.0, 36.0},
		{51.0, 36.0},
	}
}

func TestContainsSquare(t *testing.T) {
	zone := squareZone()

	tests := []struct {
		name string
		lat  float64
		lon  float64
		want bool
	}{
		{"center", 35.5, 51.5, true},
		{"below", 34.9, 51.5, false},
		{"above", 36.1, 51.5, false},
		{"left", 35.5, 50.9, false},
		{"right", 35.5, 52.1, false},
		{"near corner inside", 35.001, 51.001, true},
		{"far away", 10.0, 10.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := zone.Contains(tt.lat, tt.lon); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
			}
		})
	}
}

// 顶点是 (lon, lat) 而点是 (lat, lon), 轴序翻转属于契约
// 把坐标轴传反的点必须判为界外
func TestContainsAxisOrder(t *testing.T) {
	zone := squareZone()

	// 正确轴序: lat=35.5, lon=51.5 在界内
	if !zone.Contains(35.5, 51.5) {
		t.Fatal("expected (lat=35.5, lon=51.5) inside")
	}

	// 翻转轴序后落在完全不同的位置, 必须在界外
	if zone.Contains(51.5, 35.5) {
		t.Error("swapped axes (lat=51.5, lon=35.5) must be outside")
	}
}

func TestContainsBoundaryInclusive(t *testing.T) {
	zone := squareZone()

	// 边上的点视为在内, 避免沿围栏行走时会话状态抖动
	onEdge := []struct {
		lat, lon float64
	}{
		{35.0, 51.5}, // 下边
		{36.0, 51.5}, // 上边
		{35.5, 51.0}, // 左边
		{35.5, 52.0}, // 右边
		{35.0, 51.0}, // 顶点
	}
	for _, p := range onEdge {
		if !zone.Contains(p.lat, p.lon) {
			t.Errorf("point on boundary (%v, %v) must be inside", p.lat, p.lon)
		}
	}
}

func TestContainsDegeneratePolygon(t *testing.T) {
	for _, zone := range []Polygon{nil, {}, {{51, 35}}, {{51, 35}, {52, 36}}} {
		if zone.Contains(35.5, 51.5) {
			t.Errorf("degenerate polygon %v must contain nothing", zone)
		}
	}
}

// 首尾顶点不重复的多边形与显式闭合的多边形判定一致
func TestContainsImplicitClosure(t *testing.T) {
	open := squareZone()
	closed := append(Polygon{}, open...)
	closed = append(closed, open[0])

	points := []struct {
		lat, lon float64
	}{
		{35.5, 51.5},
		{34.9, 51.5},
		{36.1, 52.1},
		{35.0, 51.5},
	}
	for _, p := range points {
		if open.Contains(p.lat, p.lon) != closed.Contains(p.lat, p.lon) {
			t.Errorf("open/closed polygon disagree at (%v, %v)", p.lat, p.lon)
		}
	}
}

func TestContainsConcavePolygon(t *testing.T) {
	// U 形围栏, 凹口在上方中部
	zone := Polygon{
		{51.0, 35.0},
		{52.0, 35.0},
		{52.0, 36.0},
		{51.6, 36.0},
		{51.6, 35.4},
		{51.4, 35.4},
		{51.4, 36.0},
		{51.0, 36.0},
	}

	if !zone.Contains(35.2, 51.5) {
		t.Error("point in the base of the U must be inside")
	}
	if zone.Contains(35.8, 51.5) {
		t.Error("point in the notch must be outside")
	}
	if !zone.Contains(35.8, 51.2) {
		t.Error("point in the left arm must be inside")
	}
}

func TestParsePolygon(t *testing.T) {
	p, err := ParsePolygon([]byte(`[[51.0,35.0],[52.0,35.0],[52.0,36.0],[51.0,36.0]]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p) != 4 {
		t.Fatalf("got %d vertices, want 4", len(p))
	}
	if p[0].Lon() != 51.0 || p[0].Lat() != 35.0 {
		t.Errorf("vertex 0 = (%v, %v), want (lon=51, lat=35)", p[0].Lon(), p[0].Lat())
	}
	if !p.Contains(35.5, 51.5) {
		t.Error("parsed polygon must contain its center")
	}

	for _, input := range []string{`{}`, `not json`, `[["a","b"]]`, `[51.0,35.0]`} {
		if _, err := ParsePolygon([]byte(input)); err == nil {
			t.Errorf("ParsePolygon(%q) succeeded, want error", input)
		}
	}
}

func TestHaversineKm(t *testing.T) {
	// 赤道上 1 度经度约 111.19 公里
	d := HaversineKm(0, 0, 0, 1)
	if d < 111 || d > 112 {
		t.Errorf("HaversineKm(0,0,0,1) = %v, want ~111.19", d)
	}

	// 同一点距离为零
	if d := HaversineKm(35.5, 51.5, 35.5, 51.5); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}
}
