package core

import (
	"sync"

	"github.com/spaghettifunk/anvil/engine/containers"
)

const AVG_COUNT int = 30

type MetricsState struct {
	mu                 sync.Mutex
	frameTimes         *containers.Ring[float64]
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
	TotalFrames        uint64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{
			frameTimes: containers.NewRing[float64](AVG_COUNT, true),
		}
	})
	return nil
}

func MetricsUpdate(frame_elapsed_time float64) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()

	// Calculate frame ms average
	frame_ms := (frame_elapsed_time * 1000.0)
	_ = metricsState.frameTimes.Push(frame_ms)
	if metricsState.frameTimes.IsFull() {
		sum := 0.0
		for i := 0; i < metricsState.frameTimes.Len(); i++ {
			sum += metricsState.frameTimes.At(i)
		}
		metricsState.MSavg = sum / float64(metricsState.frameTimes.Len())
	}

	// Calculate Frames per second.
	metricsState.AccumulatedFrameMS += frame_ms
	if metricsState.AccumulatedFrameMS > 1000 {
		metricsState.FPS = float64(metricsState.Frames)
		metricsState.AccumulatedFrameMS -= 1000
		metricsState.Frames = 0
	}

	// Count all Frames.
	metricsState.Frames++
	metricsState.TotalFrames++
}

func MetricsFPS() float64 {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	return metricsState.FPS
}

func MetricsFrameTime() float64 {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	return metricsState.MSavg
}

func MetricsFrame() (float64, float64) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	return metricsState.FPS, metricsState.MSavg
}
