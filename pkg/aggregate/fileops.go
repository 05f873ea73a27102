package aggregate

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/uilogstat/pkg/alg/stats"
	"github.com/Sumatoshi-tech/uilogstat/pkg/logline"
	"github.com/Sumatoshi-tech/uilogstat/pkg/replay"
	"github.com/Sumatoshi-tech/uilogstat/pkg/report"
)

// NoExtension is the class of file operations without an ext= field.
const NoExtension = "none"

type sizeClass struct {
	size  int64
	class string
}

// fileOpTable collects duration samples of one verb keyed by size bucket and
// extension class.
type fileOpTable struct {
	samples map[sizeClass][]float64
	classes map[string]int
	name    string
}

func newFileOpTable(name string) *fileOpTable {
	return &fileOpTable{
		name:    name,
		samples: make(map[sizeClass][]float64),
		classes: make(map[string]int),
	}
}

func (f *fileOpTable) add(size int64, class string, duration float64) {
	key := sizeClass{size: stats.RoundSignificant(size), class: class}
	f.samples[key] = append(f.samples[key], duration)
	f.classes[class]++
}

// median returns the median duration of one cell.
func (f *fileOpTable) median(size int64, class string) (float64, bool) {
	values, ok := f.samples[sizeClass{size: size, class: class}]
	if !ok || len(values) == 0 {
		return 0, false
	}

	return stats.Median(values), true
}

// columns orders extension classes by sample count descending, then name.
func (f *fileOpTable) columns() []string {
	out := slices.Sorted(maps.Keys(f.classes))
	slices.SortStableFunc(out, func(a, b string) int {
		return cmp.Compare(f.classes[b], f.classes[a])
	})

	return out
}

func (f *fileOpTable) sizes() []int64 {
	seen := make(map[int64]struct{})
	for k := range f.samples {
		seen[k.size] = struct{}{}
	}

	return slices.Sorted(maps.Keys(seen))
}

func (f *fileOpTable) table() report.Table {
	cols := f.columns()

	header := []report.Cell{report.Text("")}
	for _, c := range cols {
		header = append(header, report.Text(c))
	}

	rows := [][]report.Cell{header}

	for _, size := range f.sizes() {
		row := []report.Cell{report.Text(sizeLabel(size))}

		for _, c := range cols {
			m, ok := f.median(size, c)
			if !ok {
				row = append(row, report.Text(""))

				continue
			}

			row = append(row, report.Num(m))
		}

		rows = append(rows, row)
	}

	return report.Table{Name: f.name, AxisTitle: "SIZE", LogScale: true, Rows: rows}
}

func sizeLabel(size int64) string {
	if size < 0 {
		return "-" + humanize.Bytes(uint64(-size))
	}

	return humanize.Bytes(uint64(size))
}

// fileOps routes samples by verb.
type fileOps struct {
	byVerb  map[string]*fileOpTable
	classes map[string]string
}

func newFileOps(classes map[string]string) *fileOps {
	norm := make(map[string]string, len(classes))
	for ext, class := range classes {
		norm[strings.ToLower(strings.TrimPrefix(ext, "."))] = class
	}

	return &fileOps{
		classes: norm,
		byVerb: map[string]*fileOpTable{
			logline.VerbLoad:     newFileOpTable(TableLoadTime),
			logline.VerbSave:     newFileOpTable(TableSaveTime),
			logline.VerbExportAs: newFileOpTable(TableExportTime),
		},
	}
}

// class maps an extension to its configured class, the extension itself by
// default.
func (f *fileOps) class(ext string) string {
	if ext == "" {
		return NoExtension
	}

	if c, ok := f.classes[ext]; ok {
		return c
	}

	return ext
}

// add returns false when the sample cannot contribute to a duration table.
func (f *fileOps) add(s replay.FileOpSample) bool {
	t, ok := f.byVerb[s.Verb]
	if !ok || !s.HasSize || !s.HasDuration {
		return false
	}

	t.add(s.Size, f.class(s.Ext), s.Duration)

	return true
}

func (f *fileOps) tables() []report.Table {
	return []report.Table{
		f.byVerb[logline.VerbLoad].table(),
		f.byVerb[logline.VerbSave].table(),
		f.byVerb[logline.VerbExportAs].table(),
	}
}
