package geo

import "testing"

func TestKalmanFirstCallPassthrough(t *testing.T) {
	k := NewKalman(1e-5, 1e-4)

	lat, lon := k.Filter(35.123456, 51.654321)
	if lat != 35.123456 || lon != 51.654321 {
		t.Fatalf("first observation must pass through unchanged, got (%v, %v)", lat, lon)
	}
}

func TestKalmanSmoothsBetweenObservations(t *testing.T) {
	k := NewKalman(1e-5, 1e-4)

	k.Filter(35.0, 51.0)
	lat, lon := k.Filter(35.001, 51.001)

	// 平滑值必须落在前后两次观测之间, 且不等于任一端点
	if lat <= 35.0 || lat >= 35.001 {
		t.Errorf("smoothed lat = %v, want strictly within (35.0, 35.001)", lat)
	}
	if lon <= 51.0 || lon >= 51.001 {
		t.Errorf("smoothed lon = %v, want strictly within (51.0, 51.001)", lon)
	}
}

func TestKalmanConvergesOnStationaryPoint(t *testing.T) {
	k := NewKalman(1e-5, 1e-4)

	k.Filter(35.0, 51.0)
	var lat, lon float64
	for i := 0; i < 50; i++ {
		lat, lon = k.Filter(35.001, 51.001)
	}

	// 对同一观测值反复滤波应收敛到观测值附近
	if diff := 35.001 - lat; diff < 0 || diff > 1e-4 {
		t.Errorf("lat did not converge, got %v", lat)
	}
	if diff := 51.001 - lon; diff < 0 || diff > 1e-4 {
		t.Errorf("lon did not converge, got %v", lon)
	}
}

func TestKalmanReset(t *testing.T) {
	k := NewKalman(1e-5, 1e-4)

	k.Filter(35.0, 51.0)
	k.Filter(35.001, 51.001)
	k.Reset()

	// 复位后重新透传首个观测
	lat, lon := k.Filter(40.0, 60.0)
	if lat != 40.0 || lon != 60.0 {
		t.Errorf("after Reset first observation must pass through, got (%v, %v)", lat, lon)
	}
}
