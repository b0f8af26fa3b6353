package indicator

import "renkoconfluence/internal/model"

// VolumeSurgeValue is one reading of the volume surge detector.
type VolumeSurgeValue struct {
	Surge bool
	Ratio float64
	Avg   float64
}

// VolumeSurge compares the latest brick's attributed volume against the
// mean of a trailing window (the latest value excluded from its own mean),
// flagging a surge when the ratio crosses threshold (default window 20,
// default threshold 1.5).
type VolumeSurge struct {
	window    int
	threshold float64

	buf   []float64
	idx   int
	count int

	current VolumeSurgeValue
}

// NewVolumeSurge creates a volume surge detector.
func NewVolumeSurge(window int, threshold float64) *VolumeSurge {
	return &VolumeSurge{
		window:    window,
		threshold: threshold,
		buf:       make([]float64, window),
	}
}

func (v *VolumeSurge) Name() string { return "VOLUME_SURGE" }

func (v *VolumeSurge) Update(b model.Brick) {
	vol, _ := b.Volume.Float64()

	if v.count < v.window {
		// Still filling the mean window; this brick isn't yet "the latest
		// excluded from its own mean" comparison, so it only seeds history.
		v.buf[v.idx] = vol
		v.idx = (v.idx + 1) % v.window
		v.count++
		return
	}

	sum := 0.0
	for _, x := range v.buf {
		sum += x
	}
	avg := sum / float64(v.window)

	ratio := 1.0
	if avg > 0 {
		ratio = vol / avg
	}

	v.current = VolumeSurgeValue{
		Surge: ratio >= v.threshold,
		Ratio: ratio,
		Avg:   avg,
	}

	v.buf[v.idx] = vol
	v.idx = (v.idx + 1) % v.window
}

func (v *VolumeSurge) Value() VolumeSurgeValue { return v.current }
func (v *VolumeSurge) Ready() bool             { return v.count >= v.window }
