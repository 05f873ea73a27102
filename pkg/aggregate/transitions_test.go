package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/uilogstat/pkg/aggregate"
	"github.com/Sumatoshi-tech/uilogstat/pkg/report"
)

type pair struct {
	current, previous string
	n                 int
}

func TestTransitionCounter_RankingIgnoresInsertionOrder(t *testing.T) {
	t.Parallel()

	orders := [][]pair{
		{{"A", "B", 5}, {"A", "C", 1}, {"B", "A", 10}},
		{{"B", "A", 10}, {"A", "C", 1}, {"A", "B", 5}},
		{{"A", "C", 1}, {"B", "A", 10}, {"A", "B", 5}},
	}

	for _, order := range orders {
		c := aggregate.NewTransitionCounter()
		for _, p := range order {
			c.AddN(p.current, p.previous, p.n)
		}

		assert.Equal(t, []string{"B", "A"}, c.Rows())
		assert.Equal(t, []string{"A", "B", "C"}, c.Cols())
	}
}

func TestTransitionCounter_EmptyPreviousCountsTowardRows(t *testing.T) {
	t.Parallel()

	c := aggregate.NewTransitionCounter()
	c.AddN("X", "", 7)
	c.AddN("Y", "X", 3)

	assert.Equal(t, []string{"X", "Y"}, c.Rows())
	assert.Equal(t, []string{"X"}, c.Cols())

	m := c.Matrix()
	require.Len(t, m, 3)
	assert.Equal(t, []report.Cell{report.Text(""), report.Text("X")}, m[0])
	assert.Equal(t, []report.Cell{report.Text("X"), report.Num(0)}, m[1])
	assert.Equal(t, []report.Cell{report.Text("Y"), report.Num(3)}, m[2])
}

func TestTransitionCounter_TiesKeepFirstSeen(t *testing.T) {
	t.Parallel()

	c := aggregate.NewTransitionCounter()
	c.Add("zeta", "alpha")
	c.Add("alpha", "zeta")

	assert.Equal(t, []string{"zeta", "alpha"}, c.Rows())
	assert.Equal(t, []string{"alpha", "zeta"}, c.Cols())
}

func TestTransitionCounter_Sub(t *testing.T) {
	t.Parallel()

	c := aggregate.NewTransitionCounter()
	c.AddN("A", "B", 5)
	c.AddN("A", "C", 1)
	c.AddN("B", "A", 10)

	sub := c.Sub(1)
	require.Len(t, sub, 2)
	assert.Equal(t, []report.Cell{report.Text(""), report.Text("A")}, sub[0])
	assert.Equal(t, []report.Cell{report.Text("B"), report.Num(10)}, sub[1])

	full := c.Sub(100)
	assert.Equal(t, c.Matrix(), full)
}

func TestTransitionCounter_Empty(t *testing.T) {
	t.Parallel()

	c := aggregate.NewTransitionCounter()
	c.AddN("A", "B", 0)

	assert.Equal(t, [][]report.Cell{{report.Text("")}}, c.Matrix())
	assert.Zero(t, c.Count("A", "B"))
}
