package fire

import (
	"gonum.org/v1/gonum/stat"
)

// flickerTracker watches the fire-mask pixel count over a short rolling
// window. A real flame's silhouette pulses, so the area series has high
// variance relative to its mean; a static red object holds nearly constant.
type flickerTracker struct {
	areas       []float64
	window      int
	minVariance float64
}

func newFlickerTracker(cfg Config) *flickerTracker {
	return &flickerTracker{
		areas:       make([]float64, 0, cfg.FlickerWindow),
		window:      cfg.FlickerWindow,
		minVariance: cfg.MinFlickerVariance,
	}
}

// Push records this frame's mask pixel count, dropping the oldest sample
// once the window is full.
func (t *flickerTracker) Push(maskPixels int) {
	if len(t.areas) == t.window {
		copy(t.areas, t.areas[1:])
		t.areas = t.areas[:t.window-1]
	}
	t.areas = append(t.areas, float64(maskPixels))
}

// Variance returns the population variance of the area history normalized
// by its mean (+1 to avoid division by zero). Returns 0 until at least half
// the window has accumulated, so a cold start cannot register pulsation.
func (t *flickerTracker) Variance() float64 {
	if len(t.areas) < t.window/2 || len(t.areas) < 2 {
		return 0
	}
	mean, variance := stat.MeanVariance(t.areas, nil)
	// stat.MeanVariance is the sample variance; rescale to population
	// variance to match how this signal was originally tuned.
	n := float64(len(t.areas))
	variance *= (n - 1) / n
	return variance / (mean + 1)
}

// Pulsing reports whether the normalized variance exceeds the configured
// minimum.
func (t *flickerTracker) Pulsing() bool {
	return t.Variance() > t.minVariance
}
