package aggregate

import (
	"math"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/uilogstat/pkg/replay"
	"github.com/Sumatoshi-tech/uilogstat/pkg/report"
)

// Typing histogram defaults.
const (
	DefaultTypingBucketWidth = 1.0
	DefaultTypingBucketCount = 20
)

// typingHistogram buckets per-user median and best typing speeds. The last
// bucket is open-ended.
type typingHistogram struct {
	median []int
	best   []int
	width  float64
}

func newTypingHistogram(width float64, count int) *typingHistogram {
	return &typingHistogram{
		width:  width,
		median: make([]int, count+1),
		best:   make([]int, count+1),
	}
}

func (h *typingHistogram) bucket(speed float64) int {
	last := len(h.median) - 1

	scaled := speed / h.width
	if math.IsNaN(scaled) || scaled >= float64(last) {
		return last
	}

	if scaled < 0 {
		return 0
	}

	return int(scaled)
}

func (h *typingHistogram) add(u replay.UserSummary) {
	if !u.HasTyping() {
		return
	}

	h.median[h.bucket(u.MedianSpeed)]++
	h.best[h.bucket(u.BestSpeed)]++
}

func (h *typingHistogram) label(idx int) string {
	lower := humanize.Ftoa(float64(idx) * h.width)
	if idx == len(h.median)-1 {
		return lower + "+"
	}

	return lower
}

func (h *typingHistogram) table() report.Table {
	rows := [][]report.Cell{{report.Text(""), report.Text("Median speed"), report.Text("Best speed")}}

	for i := range h.median {
		rows = append(rows, []report.Cell{report.Text(h.label(i)), report.Num(h.median[i]), report.Num(h.best[i])})
	}

	return report.Table{Name: TableTypingSpeed, AxisTitle: "CHARS/SEC", Rows: rows}
}
