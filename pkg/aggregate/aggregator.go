// Package aggregate reduces replay output into the named report tables and
// the human-readable run summary.
package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/Sumatoshi-tech/uilogstat/pkg/replay"
	"github.com/Sumatoshi-tech/uilogstat/pkg/report"
)

// Table names.
const (
	TableUsers         = "Total_Users_Per_Document"
	TableViewers       = "Total_Viewers_Per_Doc"
	TableEditors       = "Total_Editors_Per_Doc"
	TableEditorViewer  = "Editor-Viewer_Per_Doc"
	TableCategories    = "Convert_Thumbnail_Viewer_Edit"
	TableUndo          = "Undo_Command"
	TableTransitions   = "Command_Transitions"
	TableSubTransition = "Sub_Command_Transitions"
	TableTypingSpeed   = "Typing_Speed"
	TableLoadTime      = "Load_Time"
	TableSaveTime      = "Save_Time"
	TableExportTime    = "Exportas_Time"
)

// NoCommand labels undo frames pushed before the user issued any command.
const NoCommand = "(no command)"

const (
	documentsColumn = "Documents"
	percent         = 100
)

// Options configures an Aggregator. Zero values select the defaults.
type Options struct {
	ExtensionClasses  map[string]string
	SubmatrixSize     int
	TypingBucketWidth float64
	TypingBucketCount int
}

// UndoEntry is one row of the undo table.
type UndoEntry struct {
	Command string
	Undone  int
	Issued  int
}

// Label is the command name as shown in reports.
func (e UndoEntry) Label() string {
	if e.Command == "" {
		return NoCommand
	}

	return e.Command
}

// Aggregator implements replay.Sink and accumulates every table of a run.
type Aggregator struct {
	transitions *TransitionCounter
	documents   *documentTables
	typing      *typingHistogram
	files       *fileOps
	undo        map[string]int
	issued      map[string]int
	undoSeen    []string
	docs        []replay.DocumentSummary
	opts        Options
	fileOpsSeen int
	fileOpsUsed int
}

// New returns an empty Aggregator.
func New(opts Options) *Aggregator {
	if opts.SubmatrixSize <= 0 {
		opts.SubmatrixSize = DefaultSubmatrixSize
	}

	if opts.TypingBucketWidth <= 0 {
		opts.TypingBucketWidth = DefaultTypingBucketWidth
	}

	if opts.TypingBucketCount <= 0 {
		opts.TypingBucketCount = DefaultTypingBucketCount
	}

	return &Aggregator{
		transitions: NewTransitionCounter(),
		documents:   newDocumentTables(),
		typing:      newTypingHistogram(opts.TypingBucketWidth, opts.TypingBucketCount),
		files:       newFileOps(opts.ExtensionClasses),
		undo:        make(map[string]int),
		issued:      make(map[string]int),
		opts:        opts,
	}
}

// DocumentClosed implements replay.Sink.
func (a *Aggregator) DocumentClosed(doc replay.DocumentSummary) {
	a.docs = append(a.docs, doc)
	a.documents.add(doc)

	for _, u := range doc.Users {
		a.typing.add(u)
	}
}

// UndoAttributed implements replay.Sink.
func (a *Aggregator) UndoAttributed(command string, units int) {
	if units <= 0 {
		return
	}

	if _, ok := a.undo[command]; !ok {
		a.undoSeen = append(a.undoSeen, command)
	}

	a.undo[command] += units
}

// Transition implements replay.Sink.
func (a *Aggregator) Transition(current, previous string) {
	a.transitions.Add(current, previous)
}

// FileOp implements replay.Sink.
func (a *Aggregator) FileOp(sample replay.FileOpSample) {
	a.fileOpsSeen++

	if a.files.add(sample) {
		a.fileOpsUsed++
	}
}

// SetIssued records the total issued count per command from the second pass.
func (a *Aggregator) SetIssued(issued map[string]int) {
	a.issued = issued
}

// Transitions exposes the transition counter.
func (a *Aggregator) Transitions() *TransitionCounter {
	return a.transitions
}

// Documents returns the closed document summaries in close order.
func (a *Aggregator) Documents() []replay.DocumentSummary {
	return a.docs
}

// FileOpCounts returns how many file operations were seen and how many
// carried both a size and a duration.
func (a *Aggregator) FileOpCounts() (seen, used int) {
	return a.fileOpsSeen, a.fileOpsUsed
}

// Undo returns the undo entries sorted by undone units descending, ties in
// first-attribution order.
func (a *Aggregator) Undo() []UndoEntry {
	out := make([]UndoEntry, 0, len(a.undoSeen))
	for _, cmd := range a.undoSeen {
		out = append(out, UndoEntry{Command: cmd, Undone: a.undo[cmd], Issued: a.issued[cmd]})
	}

	slices.SortStableFunc(out, func(x, y UndoEntry) int {
		return cmp.Compare(y.Undone, x.Undone)
	})

	return out
}

func (a *Aggregator) undoTable() report.Table {
	rows := [][]report.Cell{{
		report.Text(""), report.Text("Total Commands"), report.Text("Undo count"), report.Text("Undo %"),
	}}

	for _, e := range a.Undo() {
		pct := report.Text(noData)
		if r, ok := ratioPercent(e.Undone, e.Issued); ok {
			pct = report.Num(r)
		}

		rows = append(rows, []report.Cell{report.Text(e.Label()), report.Num(e.Issued), report.Num(e.Undone), pct})
	}

	return report.Table{Name: TableUndo, AxisTitle: "COMMAND", Rows: rows}
}

// Tables returns every table in presentation order.
func (a *Aggregator) Tables() []report.Table {
	tables := []report.Table{
		histogram(TableUsers, "USERS", a.documents.users),
		histogram(TableViewers, "VIEWERS", a.documents.viewers),
		histogram(TableEditors, "EDITORS", a.documents.editors),
		a.documents.editorViewerTable(),
		a.documents.categoryTable(),
		a.undoTable(),
		{Name: TableTransitions, Rows: a.transitions.Matrix()},
		{
			Name:         TableSubTransition,
			Rows:         a.transitions.Sub(a.opts.SubmatrixSize),
			HeatMap:      true,
			RotateHeader: true,
		},
		a.typing.table(),
	}

	return append(tables, a.files.tables()...)
}

// TableSet wraps Tables with a fresh run identity.
func (a *Aggregator) TableSet(source string) *report.TableSet {
	return &report.TableSet{
		Created: time.Now().UTC(),
		RunID:   uuid.NewString(),
		Source:  source,
		Tables:  a.Tables(),
	}
}

// Summary computes the run summary.
func (a *Aggregator) Summary() Summary {
	return Summarize(a.docs, a.Undo())
}
