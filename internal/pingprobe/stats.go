package pingprobe

import (
	"math"
	"sort"

	"github.com/netwatch-io/netwatch/internal/models"
)

// computeStats derives PingStats from the received RTT samples using
// linear-interpolation percentiles (spec.md §4.5). Targets with zero
// received samples get null RTT fields.
func computeStats(samples []*float64) models.PingStats {
	var received []float64
	for _, s := range samples {
		if s != nil {
			received = append(received, *s)
		}
	}
	if len(received) == 0 {
		return models.PingStats{}
	}
	sort.Float64s(received)

	mean := meanOf(received)
	return models.PingStats{
		Min:  ptr(received[0]),
		Max:  ptr(received[len(received)-1]),
		Mean: ptr(mean),
		Mdev: ptr(stddevOf(received, mean)),
		P10:  ptr(percentile(received, 10)),
		P25:  ptr(percentile(received, 25)),
		P50:  ptr(percentile(received, 50)),
		P75:  ptr(percentile(received, 75)),
		P90:  ptr(percentile(received, 90)),
		P95:  ptr(percentile(received, 95)),
	}
}

func meanOf(sorted []float64) float64 {
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}

func stddevOf(sorted []float64, mean float64) float64 {
	if len(sorted) < 2 {
		return 0
	}
	var sumSq float64
	for _, v := range sorted {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(sorted)-1))
}

// percentile computes the pth percentile (0-100) of an already-sorted slice
// via linear interpolation between the two nearest ranks (spec.md §4.5).
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func ptr(f float64) *float64 { return &f }
