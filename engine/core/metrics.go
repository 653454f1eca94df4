package core

import "sync"

const AVG_COUNT uint8 = 30

// MetricsState keeps a moving average of frame times and a frames-per-second counter.
type MetricsState struct {
	FrameAVGCounter    uint8
	MStimes            [AVG_COUNT]float64
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{}
	})
	return nil
}

// Update records one frame that took frameElapsedTime seconds.
func (m *MetricsState) Update(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0
	m.MStimes[m.FrameAVGCounter] = frameMS
	if m.FrameAVGCounter == AVG_COUNT-1 {
		var sum float64
		for i := uint8(0); i < AVG_COUNT; i++ {
			sum += m.MStimes[i]
		}
		m.MSavg = sum / float64(AVG_COUNT)
	}
	m.FrameAVGCounter++
	m.FrameAVGCounter %= AVG_COUNT

	// Calculate Frames per second.
	m.AccumulatedFrameMS += frameMS
	m.Frames++
	if m.AccumulatedFrameMS > 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
	}
}

func MetricsUpdate(frameElapsedTime float64) {
	if metricsState == nil {
		return
	}
	metricsState.Update(frameElapsedTime)
}

func MetricsFPS() float64 {
	if metricsState == nil {
		return 0
	}
	return metricsState.FPS
}

func MetricsFrameTime() float64 {
	if metricsState == nil {
		return 0
	}
	return metricsState.MSavg
}
