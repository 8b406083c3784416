package bench

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// Histogram range: 1 microsecond to 1 hour, 3 significant figures.
	histogramMin     = 1
	histogramMax     = int64(time.Hour / time.Microsecond)
	histogramSigFigs = 3
)

// Recorder collects request latencies and outcome codes. It is safe for
// concurrent use.
type Recorder struct {
	mu        sync.Mutex
	hist      *hdrhistogram.Histogram
	codes     map[string]int
	succeeded int
	failed    int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		hist:  hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		codes: make(map[string]int),
	}
}

// Record adds one request. An empty code counts as a success.
func (r *Recorder) Record(d time.Duration, code string) {
	micros := d.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// RecordValue only fails for out of range values, clamped above.
	_ = r.hist.RecordValue(micros)
	if code == "" {
		r.succeeded++
		return
	}
	r.failed++
	r.codes[code]++
}

// Summary reports what has been recorded so far.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	codes := make(map[string]int, len(r.codes))
	for code, n := range r.codes {
		codes[code] = n
	}

	return Summary{
		Total:     r.succeeded + r.failed,
		Succeeded: r.succeeded,
		Failed:    r.failed,
		Codes:     codes,
		Mean:      micros(int64(r.hist.Mean())),
		P50:       micros(r.hist.ValueAtQuantile(50)),
		P90:       micros(r.hist.ValueAtQuantile(90)),
		P99:       micros(r.hist.ValueAtQuantile(99)),
		Max:       micros(r.hist.Max()),
	}
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
