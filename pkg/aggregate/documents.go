package aggregate

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/Sumatoshi-tech/uilogstat/pkg/replay"
	"github.com/Sumatoshi-tech/uilogstat/pkg/report"
)

// Document categories.
const (
	CategoryConvert      = "Convert/Thumbnail"
	CategoryViewerOnly   = "Viewer-Only"
	CategorySingleViewer = "Single Viewer"
	CategoryEdit         = "Edit"
	CategorySingleEditor = "Single Editor"
)

// Categories lists the document categories in presentation order. A document
// may fall into more than one: every Single Viewer is also Viewer-Only and
// every Single Editor is also Edit.
func Categories() []string {
	return []string{CategoryConvert, CategoryViewerOnly, CategorySingleViewer, CategoryEdit, CategorySingleEditor}
}

// Categorize returns the categories doc belongs to.
func Categorize(doc replay.DocumentSummary) []string {
	switch {
	case doc.Participants == 0:
		return []string{CategoryConvert}
	case doc.Editors == 0 && doc.Participants == 1:
		return []string{CategoryViewerOnly, CategorySingleViewer}
	case doc.Editors == 0:
		return []string{CategoryViewerOnly}
	case doc.Participants == 1:
		return []string{CategoryEdit, CategorySingleEditor}
	default:
		return []string{CategoryEdit}
	}
}

type editorViewer struct {
	editors, viewers int
}

// documentTables accumulates the per-document histograms.
type documentTables struct {
	users        map[int]int
	viewers      map[int]int
	editors      map[int]int
	editorViewer map[editorViewer]int
	categories   map[string]int
}

func newDocumentTables() *documentTables {
	return &documentTables{
		users:        make(map[int]int),
		viewers:      make(map[int]int),
		editors:      make(map[int]int),
		editorViewer: make(map[editorViewer]int),
		categories:   make(map[string]int),
	}
}

func (d *documentTables) add(doc replay.DocumentSummary) {
	d.users[doc.Participants]++
	d.viewers[doc.Viewers()]++
	d.editors[doc.Editors]++
	d.editorViewer[editorViewer{doc.Editors, doc.Viewers()}]++

	for _, c := range Categorize(doc) {
		d.categories[c]++
	}
}

// histogram renders key → documents sorted by key descending.
func histogram(name, axis string, counts map[int]int) report.Table {
	keys := slices.Sorted(maps.Keys(counts))
	slices.Reverse(keys)

	rows := [][]report.Cell{{report.Text(""), report.Text(documentsColumn)}}
	for _, k := range keys {
		rows = append(rows, []report.Cell{report.Num(k), report.Num(counts[k])})
	}

	return report.Table{Name: name, AxisTitle: axis, Rows: rows}
}

func (d *documentTables) editorViewerTable() report.Table {
	keys := make([]editorViewer, 0, len(d.editorViewer))
	for k := range d.editorViewer {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b editorViewer) int {
		return cmp.Or(cmp.Compare(b.editors, a.editors), cmp.Compare(b.viewers, a.viewers))
	})

	rows := [][]report.Cell{{report.Text(""), report.Text(documentsColumn)}}
	for _, k := range keys {
		label := fmt.Sprintf("%d | %d", k.editors, k.viewers)
		rows = append(rows, []report.Cell{report.Text(label), report.Num(d.editorViewer[k])})
	}

	return report.Table{Name: TableEditorViewer, AxisTitle: "EDITORS | VIEWERS", Rows: rows}
}

func (d *documentTables) categoryTable() report.Table {
	names := Categories()
	slices.SortStableFunc(names, func(a, b string) int {
		return cmp.Compare(d.categories[b], d.categories[a])
	})

	rows := [][]report.Cell{{report.Text(""), report.Text("Count")}}
	for _, name := range names {
		rows = append(rows, []report.Cell{report.Text(name), report.Num(d.categories[name])})
	}

	return report.Table{Name: TableCategories, AxisTitle: "DOC TYPE", Rows: rows}
}
