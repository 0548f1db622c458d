package geo

import (
	"encoding/json"
	"fmt"
	"math"
)

// Vertex 多边形顶点, 经度在前 (lon, lat)
type Vertex [2]float64

// Lon 顶点经度
func (v Vertex) Lon() float64 { return v[0] }

// Lat 顶点纬度
func (v Vertex) Lat() float64 { return v[1] }

// Polygon 地块边界多边形
// 顶点序为 (lon, lat), 与位置上报的 (lat, lon) 相反, 属于存量数据契约
// 首尾顶点不要求重复闭合
type Polygon []Vertex

// onEdgeEpsilon 判定点落在多边形边上的容差
const onEdgeEpsilon = 1e-12

// ParsePolygon 解析 JSON 编码的边界, 形如 [[lon,lat],...]
func ParsePolygon(data []byte) (Polygon, error) {
	var p Polygon
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse polygon: %w", err)
	}
	return p, nil
}

// Valid 至少三个顶点才构成有效围栏
func (p Polygon) Valid() bool {
	return len(p) >= 3
}

// Contains 射线法判断点是否在多边形内
// 点按 (lat, lon) 传入; 边界上的点视为在内, 避免沿围栏行走时状态抖动
// 不足三个顶点的退化多边形视为无围栏, 一律返回 false
func (p Polygon) Contains(lat, lon float64) bool {
	if !p.Valid() {
		return false
	}

	x, y := lon, lat
	inside := false
	n := len(p)
	j := n - 1 // 隐式闭合: 末顶点连回首顶点
	for i := 0; i < n; i++ {
		xi, yi := p[i].Lon(), p[i].Lat()
		xj, yj := p[j].Lon(), p[j].Lat()

		if pointOnSegment(x, y, xi, yi, xj, yj) {
			return true
		}

		if (yi > y) != (yj > y) {
			xCross := (xj-xi)*(y-yi)/(yj-yi) + xi
			if x < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// pointOnSegment 点 (x,y) 是否落在线段 (x1,y1)-(x2,y2) 上
func pointOnSegment(x, y, x1, y1, x2, y2 float64) bool {
	cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
	if math.Abs(cross) > onEdgeEpsilon {
		return false
	}
	return x >= math.Min(x1, x2)-onEdgeEpsilon && x <= math.Max(x1, x2)+onEdgeEpsilon &&
		y >= math.Min(y1, y2)-onEdgeEpsilon && y <= math.Max(y1, y2)+onEdgeEpsilon
}
