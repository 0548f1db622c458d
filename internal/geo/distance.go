package geo

import "github.com/golang/geo/s2"

// 地球平均半径 (公里)
const earthRadiusKm = 6371.0088

// HaversineKm 计算两点间大圆距离 (公里)
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusKm
}
