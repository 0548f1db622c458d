package geo

// Kalman 单对象位置平滑器
// 对经纬度各应用一维卡尔曼滤波, 不做离群值截断:
// 大幅跳变视为真实快速移动而非噪声, 滤波器会迅速跟上
type Kalman struct {
	q float64 // 过程噪声
	r float64 // 测量噪声

	initialized bool
	latEst      float64
	lonEst      float64
	latP        float64 // 纬度估计不确定度
	lonP        float64
}

// NewKalman 创建位置平滑器, Q/R 在构造时固定
func NewKalman(q, r float64) *Kalman {
	return &Kalman{q: q, r: r}
}

// Filter 输入一次原始测量, 返回平滑后的坐标
// 构造或 Reset 后的首次调用原样返回输入, 并以其初始化内部估计
func (k *Kalman) Filter(lat, lon float64) (float64, float64) {
	if !k.initialized {
		k.latEst = lat
		k.lonEst = lon
		k.latP = k.q
		k.lonP = k.q
		k.initialized = true
		return lat, lon
	}

	k.latEst, k.latP = kalmanStep(k.latEst, k.latP, lat, k.q, k.r)
	k.lonEst, k.lonP = kalmanStep(k.lonEst, k.lonP, lon, k.q, k.r)
	return k.latEst, k.lonEst
}

// Reset 清空状态, 下一次输入作为新的基准
func (k *Kalman) Reset() {
	k.initialized = false
	k.latEst = 0
	k.lonEst = 0
	k.latP = 0
	k.lonP = 0
}

// kalmanStep 一维滤波迭代
func kalmanStep(est, p, meas, q, r float64) (float64, float64) {
	gain := p / (p + r)
	newEst := est + gain*(meas-est)
	newP := (1-gain)*p + q
	return newEst, newP
}
