package aggregate

import (
	"cmp"
	"slices"

	"github.com/Sumatoshi-tech/uilogstat/pkg/report"
)

// DefaultSubmatrixSize is the edge of the heat-mapped transition sub-matrix.
const DefaultSubmatrixSize = 10

type transitionKey struct {
	current, previous string
}

// TransitionCounter accumulates (current, previous) command pairs.
type TransitionCounter struct {
	counts       map[transitionKey]int
	currentFreq  map[string]int
	previousFreq map[string]int
	currentSeen  []string
	previousSeen []string
}

// NewTransitionCounter returns an empty counter.
func NewTransitionCounter() *TransitionCounter {
	return &TransitionCounter{
		counts:       make(map[transitionKey]int),
		currentFreq:  make(map[string]int),
		previousFreq: make(map[string]int),
	}
}

// Add records one occurrence of current following previous. Either side may
// be empty; an empty side contributes to the other side's marginal only.
func (c *TransitionCounter) Add(current, previous string) {
	c.AddN(current, previous, 1)
}

// AddN records n occurrences.
func (c *TransitionCounter) AddN(current, previous string, n int) {
	if n <= 0 {
		return
	}

	c.counts[transitionKey{current, previous}] += n

	if current != "" {
		if _, ok := c.currentFreq[current]; !ok {
			c.currentSeen = append(c.currentSeen, current)
		}

		c.currentFreq[current] += n
	}

	if previous != "" {
		if _, ok := c.previousFreq[previous]; !ok {
			c.previousSeen = append(c.previousSeen, previous)
		}

		c.previousFreq[previous] += n
	}
}

// Count returns how often current followed previous.
func (c *TransitionCounter) Count(current, previous string) int {
	return c.counts[transitionKey{current, previous}]
}

// Rows returns current commands ranked by descending marginal, ties in
// first-seen order.
func (c *TransitionCounter) Rows() []string {
	return rank(c.currentSeen, c.currentFreq)
}

// Cols returns previous commands ranked by descending marginal, ties in
// first-seen order.
func (c *TransitionCounter) Cols() []string {
	return rank(c.previousSeen, c.previousFreq)
}

func rank(seen []string, freq map[string]int) []string {
	out := slices.Clone(seen)
	slices.SortStableFunc(out, func(a, b string) int {
		return cmp.Compare(freq[b], freq[a])
	})

	return out
}

// Matrix returns the full ranked matrix with a header row of previous
// commands and a label column of current commands.
func (c *TransitionCounter) Matrix() [][]report.Cell {
	return c.matrix(c.Rows(), c.Cols())
}

// Sub returns the top-left n×n corner of Matrix.
func (c *TransitionCounter) Sub(n int) [][]report.Cell {
	rows, cols := c.Rows(), c.Cols()

	return c.matrix(rows[:min(n, len(rows))], cols[:min(n, len(cols))])
}

func (c *TransitionCounter) matrix(rows, cols []string) [][]report.Cell {
	out := make([][]report.Cell, 0, len(rows)+1)

	header := make([]report.Cell, 0, len(cols)+1)
	header = append(header, report.Text(""))

	for _, col := range cols {
		header = append(header, report.Text(col))
	}

	out = append(out, header)

	for _, row := range rows {
		line := make([]report.Cell, 0, len(cols)+1)
		line = append(line, report.Text(row))

		for _, col := range cols {
			line = append(line, report.Num(c.Count(row, col)))
		}

		out = append(out, line)
	}

	return out
}
