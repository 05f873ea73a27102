package aggregate

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/uilogstat/pkg/alg/stats"
	"github.com/Sumatoshi-tech/uilogstat/pkg/replay"
)

const noData = "no data"

// Guarded is a ratio that may be undefined for want of a denominator.
type Guarded struct {
	Value float64
	OK    bool
}

// String formats the value with two decimals or reports no data.
func (g Guarded) String() string {
	if !g.OK {
		return noData
	}

	return strconv.FormatFloat(g.Value, 'f', 2, 64)
}

// Percent formats the value as a percentage.
func (g Guarded) Percent() string {
	if !g.OK {
		return noData
	}

	return g.String() + "%"
}

func guard(num, den int) Guarded {
	v, ok := stats.Ratio(float64(num), float64(den))

	return Guarded{Value: v, OK: ok}
}

func ratioPercent(num, den int) (float64, bool) {
	v, ok := stats.Ratio(float64(num), float64(den))

	return v * percent, ok
}

// Span is a min-max range over documents.
type Span struct {
	Min, Max int
}

// Summary is the run-level overview printed after analysis.
type Summary struct {
	Undo             []UndoEntry
	Users            Span
	ActiveUsers      Span
	PassiveUsers     Span
	Documents        int
	EditedDocuments  int
	TotalUsers       int
	ActiveTotal      int
	UsersWhenEdited  int
	ActiveWhenEdited int
}

// Summarize computes the summary over closed documents.
func Summarize(docs []replay.DocumentSummary, undo []UndoEntry) Summary {
	s := Summary{Documents: len(docs), Undo: undo}

	users := make([]int, 0, len(docs))
	active := make([]int, 0, len(docs))
	passive := make([]int, 0, len(docs))

	for _, d := range docs {
		s.TotalUsers += d.Participants
		s.ActiveTotal += d.Editors

		if d.Editors > 0 {
			s.EditedDocuments++
			s.UsersWhenEdited += d.Participants
			s.ActiveWhenEdited += d.Editors
		}

		users = append(users, d.Participants)
		active = append(active, d.Editors)
		passive = append(passive, d.Viewers())
	}

	s.Users = Span{Min: stats.Min(users), Max: stats.Max(users)}
	s.ActiveUsers = Span{Min: stats.Min(active), Max: stats.Max(active)}
	s.PassiveUsers = Span{Min: stats.Min(passive), Max: stats.Max(passive)}

	return s
}

// EditedShare is the fraction of documents with at least one editor.
func (s Summary) EditedShare() Guarded {
	g := guard(s.EditedDocuments, s.Documents)
	g.Value *= percent

	return g
}

// ActiveShare is the fraction of users that edited.
func (s Summary) ActiveShare() Guarded {
	g := guard(s.ActiveTotal, s.TotalUsers)
	g.Value *= percent

	return g
}

// ActiveShareWhenEdited is the fraction of editors among the users of edited
// documents.
func (s Summary) ActiveShareWhenEdited() Guarded {
	g := guard(s.ActiveWhenEdited, s.UsersWhenEdited)
	g.Value *= percent

	return g
}

// UsersPerDocument is the average participant count.
func (s Summary) UsersPerDocument() Guarded {
	return guard(s.TotalUsers, s.Documents)
}

// ActivePerDocument is the average editor count.
func (s Summary) ActivePerDocument() Guarded {
	return guard(s.ActiveTotal, s.Documents)
}

// PassivePerDocument is the average viewer count.
func (s Summary) PassivePerDocument() Guarded {
	return guard(s.TotalUsers-s.ActiveTotal, s.Documents)
}

// Write prints the summary.
func (s Summary) Write(w io.Writer, noColor bool) error {
	bold := color.New(color.Bold)
	if noColor {
		bold.DisableColor()
	} else {
		bold.EnableColor()
	}

	span := func(sp Span) string {
		if s.Documents == 0 {
			return noData
		}

		return fmt.Sprintf("%d-%d", sp.Min, sp.Max)
	}

	lines := []string{
		fmt.Sprintf("Documents opened: %s Documents edited: %s (=%s)",
			humanize.Comma(int64(s.Documents)), humanize.Comma(int64(s.EditedDocuments)), s.EditedShare().Percent()),
		fmt.Sprintf("Total users: %s Active users: %s (=%s)",
			humanize.Comma(int64(s.TotalUsers)), humanize.Comma(int64(s.ActiveTotal)), s.ActiveShare().Percent()),
		fmt.Sprintf("Users/Document min-max: %s Average: %s", span(s.Users), s.UsersPerDocument()),
		fmt.Sprintf("   Active users/Document min-max: %s Average: %s", span(s.ActiveUsers), s.ActivePerDocument()),
		fmt.Sprintf("   Passive users/Document min-max: %s Average: %s", span(s.PassiveUsers), s.PassivePerDocument()),
		fmt.Sprintf("(Active users/All users) when document edited: %s", s.ActiveShareWhenEdited().Percent()),
	}

	for _, line := range lines {
		_, err := fmt.Fprintln(w, line)
		if err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	_, err := fmt.Fprintf(w, "\n%s\n(Count of undo, Count of all commands, The command)\n", bold.Sprint("Most undone commands:"))
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	for _, e := range s.Undo {
		_, err = fmt.Fprintf(w, "%d %d %s\n", e.Undone, e.Issued, e.Label())
		if err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	return nil
}
